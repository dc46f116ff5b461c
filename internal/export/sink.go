// Package export hands rendered report artifacts to a storage sink and
// returns a URL the caller can fetch them from.
package export

import "context"

type Sink interface {
	Upload(ctx context.Context, filename string, payload []byte) (string, error)
}
