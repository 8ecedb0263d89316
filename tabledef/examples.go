package tabledef

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed examples
var examples embed.FS

// Examples lists the bundled example definitions by name.
func Examples() []string {
	entries, _ := fs.ReadDir(examples, "examples")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Example returns the source of a bundled example and its format.
func Example(name string) ([]byte, Format, error) {
	entries, _ := fs.ReadDir(examples, "examples")
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if strings.TrimSuffix(e.Name(), ext) != name {
			continue
		}
		format, err := ParseFormat(ext)
		if err != nil {
			return nil, "", err
		}
		data, err := examples.ReadFile("examples/" + e.Name())
		return data, format, err
	}
	return nil, "", errors.Errorf("no example named %q", name)
}
