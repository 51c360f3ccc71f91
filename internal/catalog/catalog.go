// Package catalog holds the builtin connector descriptors compiled into
// the binary.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

//go:embed assets/*.yaml
var assetsFS embed.FS

var (
	builtinOnce sync.Once
	builtin     []*descriptor.Descriptor
	builtinErr  error
)

// Builtin returns the embedded descriptors, parsed and validated once per
// process, sorted by uniqueKey. A broken embedded asset is a build defect
// and fails every caller.
func Builtin() ([]*descriptor.Descriptor, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = loadAll()
	})
	return builtin, builtinErr
}

// Asset is one embedded descriptor document, unparsed.
type Asset struct {
	Name string
	Raw  []byte
}

// Assets returns the raw embedded documents, sorted by name, for callers
// that feed a registry load pass rather than wanting parsed descriptors.
func Assets() ([]Asset, error) {
	entries, err := fs.Glob(assetsFS, "assets/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	out := make([]Asset, 0, len(entries))
	for _, name := range entries {
		raw, err := assetsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded descriptor %s: %w", name, err)
		}
		out = append(out, Asset{Name: name, Raw: raw})
	}
	return out, nil
}

func loadAll() ([]*descriptor.Descriptor, error) {
	entries, err := fs.Glob(assetsFS, "assets/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	out := make([]*descriptor.Descriptor, 0, len(entries))
	for _, name := range entries {
		raw, err := assetsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read embedded descriptor %s: %w", name, err)
		}
		d, err := descriptor.Load(raw)
		if err != nil {
			return nil, fmt.Errorf("load embedded descriptor %s: %w", name, err)
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueKey < out[j].UniqueKey })
	return out, nil
}
