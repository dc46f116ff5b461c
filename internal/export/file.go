package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/yourname/timesheet/internal"
)

// FileSink writes report files into a local directory; the returned URL is
// a file:// path. The default for development and single-host deployments.
type FileSink struct {
	dir    string
	logger internal.Logger
}

func NewFileSink(dir string, logger internal.Logger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Errorf("failed to create export directory: %v", err)
		return nil, err
	}
	return &FileSink{dir: dir, logger: logger}, nil
}

func (s *FileSink) Upload(ctx context.Context, filename string, payload []byte) (string, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		s.logger.Errorf("failed to write %s: %v", path, err)
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + abs, nil
}

var _ Sink = (*FileSink)(nil)
