package prefabs

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
)

//go:embed data/*.yaml
var weaponsFS embed.FS

//go:embed scripts/*.tengo
var scriptsFS embed.FS

// Load reads a weapon definition by name. A file on disk under prefabs/data
// overrides the embedded copy, so definitions can be edited without a
// rebuild.
func Load(name string) ([]byte, error) {
	clean := cleanDataPath(name)
	if data, err := os.ReadFile(diskDataPath(clean)); err == nil {
		return data, nil
	}
	return weaponsFS.ReadFile(clean)
}

// LoadScript reads an embedded tengo script by name.
func LoadScript(name string) ([]byte, error) {
	s := filepath.ToSlash(name)
	s = strings.TrimPrefix(s, "prefabs/")
	if !strings.HasPrefix(s, "scripts/") {
		s = "scripts/" + s
	}
	return scriptsFS.ReadFile(s)
}

// EmbeddedWeaponFiles lists the embedded weapon definition file names.
func EmbeddedWeaponFiles() []string {
	entries, err := weaponsFS.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func cleanDataPath(path string) string {
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, "prefabs/")
	if !strings.HasPrefix(s, "data/") {
		s = "data/" + s
	}
	return s
}

func diskDataPath(clean string) string {
	return filepath.Join("prefabs", filepath.FromSlash(clean))
}
