package fsys_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frankiebaffa/tenplates/internal/fsys"
	"gotest.tools/v3/assert"
)

func TestOSReadAndExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tenplate")
	assert.NilError(t, os.WriteFile(path, []byte("hi"), 0o644))

	var f fsys.OS
	data, err := f.Read(path)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "hi")
	assert.Assert(t, f.Exists(path))
	assert.Assert(t, !f.Exists(filepath.Join(dir, "missing")))
}

func TestOSListDirReversesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	var f fsys.OS
	plain, err := os.ReadDir(dir)
	assert.NilError(t, err)

	entries, err := f.ListDir(dir)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), len(plain))
	for i, e := range entries {
		assert.Equal(t, e.Name, plain[len(plain)-1-i].Name())
	}
}

func TestListFilesOnlyExcludesDirs(t *testing.T) {
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "file.txt"), nil, 0o644))
	assert.NilError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	var f fsys.OS
	files, err := fsys.ListFilesOnly(f, dir)
	assert.NilError(t, err)
	assert.Equal(t, len(files), 1)
	assert.Equal(t, filepath.Base(files[0]), "file.txt")
}

func TestListEntryPathsIncludesDirs(t *testing.T) {
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "file.txt"), nil, 0o644))
	assert.NilError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	var f fsys.OS
	paths, err := fsys.ListEntryPaths(f, dir)
	assert.NilError(t, err)
	assert.Equal(t, len(paths), 2)
}

func TestCanonicalizeResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tenplate")
	assert.NilError(t, os.WriteFile(path, nil, 0o644))

	var f fsys.OS
	canon, err := f.Canonicalize(path)
	assert.NilError(t, err)
	assert.Assert(t, filepath.IsAbs(canon))
}

func TestSortEntries(t *testing.T) {
	entries := []fsys.Entry{{Name: "b"}, {Name: "a"}, {Name: "c"}}
	fsys.SortEntries(entries)
	assert.Equal(t, entries[0].Name, "a")
	assert.Equal(t, entries[1].Name, "b")
	assert.Equal(t, entries[2].Name, "c")
}
