package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverProject_FindsRootInParent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "edgedb.toml"), []byte("[instance]\nname=\"x\"\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok, err := discoverProject(nested)
	require.NoError(t, err)
	require.True(t, ok)

	wantAbs, _ := filepath.Abs(root)
	assert.Equal(t, wantAbs, found)
}

func TestDiscoverProject_NoneFound(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := discoverProject(dir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseProjectFile_ReadsInstanceName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edgedb.toml")
	require.NoError(t, os.WriteFile(path, []byte("[instance]\nname = \"myinstance\"\n"), 0o644))

	pf, err := parseProjectFile(path)
	require.NoError(t, err)
	assert.Equal(t, "myinstance", pf.Instance.Name)
}

func TestParseProjectFile_UnknownKeysIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edgedb.toml")
	body := "[instance]\nname = \"myinstance\"\n\n[hooks]\nbefore_migrate = \"echo hi\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	pf, err := parseProjectFile(path)
	require.NoError(t, err)
	assert.Equal(t, "myinstance", pf.Instance.Name)
}

func TestParseProjectFile_MissingFileRejected(t *testing.T) {
	_, err := parseProjectFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestResolveProject_UninitializedProjectRejected(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	root := t.TempDir()
	_, err := resolveProject(root)
	assert.Error(t, err)
}

func TestResolveProject_ReadsStashedInstanceName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	root := t.TempDir()
	stashDir := filepath.Join(home, ".edgedb", "projects", stashDirName(root))
	require.NoError(t, os.MkdirAll(stashDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stashDir, "instance-name"), []byte("myinst\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(stashDir, "database"), []byte("mydb\n"), 0o644))

	o, err := resolveProject(root)
	require.NoError(t, err)
	require.NotNil(t, o.InstanceName)
	assert.Equal(t, "myinst", *o.InstanceName)
	require.NotNil(t, o.Database)
	assert.Equal(t, "mydb", *o.Database)
}

func TestTrimNewline(t *testing.T) {
	assert.Equal(t, "abc", trimNewline("abc\n"))
	assert.Equal(t, "abc", trimNewline("abc\r\n"))
	assert.Equal(t, "abc", trimNewline("abc"))
}
