package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindFilesRecursiveCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "define.h", "#define A 1\n")
	writeFile(t, root, "UPPER.H", "#define B 2\n")
	writeFile(t, root, "sub/deep/nested.h", "#define C 3\n")
	writeFile(t, root, "notes.txt", "not a header\n")

	files, err := FindFiles(root, ".h")
	require.NoError(t, err)
	require.Equal(t, []string{"UPPER.H", "define.h", "sub/deep/nested.h"}, files)
}

func TestFindFilesEmptyDir(t *testing.T) {
	files, err := FindFiles(t.TempDir(), ".h")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestReadTextFileRejectsBinary(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blob.h")
	require.NoError(t, os.WriteFile(path, []byte{0x7f, 0x00, 0x01}, 0o644))

	_, err := ReadTextFile(path)
	require.ErrorIs(t, err, errBinaryFile)
}

func TestReadTextFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "define.h")
	require.NoError(t, os.WriteFile(path, []byte("#define A 1\n"), 0o644))

	text, err := ReadTextFile(path)
	require.NoError(t, err)
	require.Equal(t, "#define A 1\n", text)
}

func TestInsideDir(t *testing.T) {
	require.True(t, insideDir("/work", "/work/sub"))
	require.True(t, insideDir("/work", "/work"))
	require.False(t, insideDir("/work", "/elsewhere"))
	require.False(t, insideDir("/work", "/work2"))
}
