//go:build !windows

package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenReadAtClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.img")
	require.NoError(t, os.WriteFile(path, []byte("hello, ntfs!"), 0o644))

	h, err := Open(path)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := h.ReadAt(buf, 7)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "ntfs!", string(buf))

	require.NoError(t, h.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.img"))
	require.Error(t, err)
}
