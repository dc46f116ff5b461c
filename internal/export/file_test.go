package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
)

func TestFileSinkUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink, err := NewFileSink(dir, &internal.NopLogger{})
	require.NoError(t, err)

	url, err := sink.Upload(context.Background(), "u1-202501.json", []byte(`{"month":"2025/01"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))

	data, err := os.ReadFile(filepath.Join(dir, "u1-202501.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2025/01"}`, string(data))
}
