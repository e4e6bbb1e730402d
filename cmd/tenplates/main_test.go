package main

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestSweepCompilesEveryTenplateFileInDir(t *testing.T) {
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "a.tenplate"), []byte("{{ 1 + 1 }}"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "b.tenplate"), []byte("{{ 2 + 2 }}"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not a template"), 0o644))

	err := sweep(dir, nil)
	assert.NilError(t, err)
}

func TestSweepAggregatesEveryFailure(t *testing.T) {
	dir := t.TempDir()
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "good.tenplate"), []byte("ok"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "bad1.tenplate"), []byte("{% unset missing /%}"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "bad2.tenplate"), []byte("{% unset missing /%}"), 0o644))

	err := sweep(dir, nil)
	assert.ErrorContains(t, err, "bad1.tenplate")
	assert.ErrorContains(t, err, "bad2.tenplate")
}

func TestRunRequiresPathOrSweep(t *testing.T) {
	err := run(nil)
	assert.ErrorContains(t, err, "no template path given")
}
