package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s := New(root, "/media/")

	st, err := s.Save(context.Background(), "attachments", "my notes.txt", strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(st.Path, "attachments/"))
	assert.True(t, strings.HasSuffix(st.Path, "_my_notes.txt"))
	assert.Equal(t, int64(11), st.Size)
	assert.True(t, strings.HasPrefix(st.ContentType, "text/plain"))
	assert.Equal(t, "/media/"+st.Path, s.URL(st.Path))
	assert.Equal(t, "my_notes.txt", BaseName(st.Path))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(st.Path)))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	require.NoError(t, s.Delete(st.Path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(st.Path)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(st.Path))
}

func TestSaveStripsDirectories(t *testing.T) {
	s := New(t.TempDir(), "/media")
	st, err := s.Save(context.Background(), "uploads", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(st.Path, "uploads/"))
	assert.Equal(t, "passwd", BaseName(st.Path))
}

func TestSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(t.TempDir(), "/media").Save(ctx, "uploads", "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDatedDir(t *testing.T) {
	d := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "reports/2024/03/07", DatedDir("reports", d))
}
