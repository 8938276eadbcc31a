// Package configfile locates YAML config files in the working directory or
// next to the running executable.
package configfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Candidates returns "<name>.yaml", "<name>.yml" and the same two names
// under a "<name>/" directory, followed by any extra paths.
func Candidates(name string, extra ...string) []string {
	out := []string{
		name + ".yaml",
		name + ".yml",
		filepath.Join(name, name+".yaml"),
		filepath.Join(name, name+".yml"),
	}
	return append(out, extra...)
}

// Find returns the first candidate that exists as a regular file, checking
// the working directory before the executable's directory.
func Find(kind string, candidates []string) (string, error) {
	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("%s config not found (expected %v)", kind, candidates)
}
