package extractor

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-converter/internal/document"
)

func TestOpen_NotAPDF(t *testing.T) {
	data := []byte("this is a plain text file, not a statement")
	_, err := Open(bytes.NewReader(data), int64(len(data)), "", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrUnreadable)
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.pdf"), "", Options{})
	assert.Error(t, err)
}

func TestDocument_CloseWithoutFile(t *testing.T) {
	d := &Document{}
	assert.NoError(t, d.Close())
	assert.Empty(t, d.Pages())
}
