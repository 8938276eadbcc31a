package configfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{
		"http.yaml",
		"http.yml",
		filepath.Join("http", "http.yaml"),
		filepath.Join("http", "http.yml"),
		"app.yaml",
	}, Candidates("http", "app.yaml"))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	candidates := Candidates("svc")

	_, err = Find("svc", candidates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "svc config not found")
	assert.Contains(t, err.Error(), "svc.yml")

	require.NoError(t, os.Mkdir("svc.yaml", 0o755))
	require.NoError(t, os.MkdirAll("svc", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("svc", "svc.yml"), []byte("a: 1\n"), 0o644))

	p, err := Find("svc", candidates)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("svc", "svc.yml"), p)

	require.NoError(t, os.WriteFile("svc.yml", []byte("a: 2\n"), 0o644))
	p, err = Find("svc", candidates)
	require.NoError(t, err)
	assert.Equal(t, "svc.yml", p)
}
