package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/wifimon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)

	require.NoError(t, write(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(b))

	// Rewriting our own file is fine.
	require.NoError(t, write(path))

	require.NoError(t, remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, remove(path))
}

func TestWriteStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)

	require.NoError(t, os.WriteFile(path, []byte("not a pid\n"), 0o600))
	require.NoError(t, write(path))

	n, ok := readPID(path)
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), n)
}

func TestWriteAlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), fileName)

	// The parent process (the test runner) is alive and is not us.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

	err := write(path)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "wifimon.pid"), Path())
}
