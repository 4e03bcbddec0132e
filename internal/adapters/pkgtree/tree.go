// Package pkgtree reads the package tree of an environment.
package pkgtree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

// Entry is one package found in a package tree.
type Entry struct {
	// Dir is the tree-relative, slash-separated directory name ("lodash", "@types/node").
	Dir string

	// Path is the absolute path of the entry.
	Path string

	// Manifest is the manifest the entry resolves to.
	Manifest *domain.Manifest
}

// ReadManifest reads the package.json at the top of a package root.
func ReadManifest(root string) (*domain.Manifest, error) {
	path := filepath.Join(root, domain.ManifestFileName)
	//nolint:gosec // root is a store slot or an environment projection
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}
	m, err := domain.ParseManifest(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// Scan lists the packages of the environment at envRoot, sorted by Dir.
// Entries whose manifest cannot be read, such as projections whose store
// slot was collected, are skipped. A missing tree yields no entries.
func Scan(envRoot string) ([]Entry, error) {
	tree := domain.PackageTree(envRoot)
	dirs, err := readDir(tree)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, d := range dirs {
		if domain.IsHidden(d) {
			continue
		}
		if strings.HasPrefix(d, "@") {
			scoped, err := readDir(filepath.Join(tree, d))
			if err != nil {
				return nil, err
			}
			for _, s := range scoped {
				if !domain.IsHidden(s) {
					entries = appendEntry(entries, tree, d+"/"+s)
				}
			}
			continue
		}
		entries = appendEntry(entries, tree, d)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Dir, b.Dir) })
	return entries, nil
}

func appendEntry(entries []Entry, tree, dir string) []Entry {
	path := filepath.Join(tree, filepath.FromSlash(dir))
	m, err := ReadManifest(path)
	if err != nil {
		return entries
	}
	return append(entries, Entry{Dir: dir, Path: path, Manifest: m})
}

// Packages returns the declared name and version of every linked package.
func Packages(envRoot string) (map[string]string, error) {
	entries, err := Scan(envRoot)
	if err != nil {
		return nil, err
	}
	pkgs := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Manifest.Name == "" {
			continue
		}
		pkgs[e.Manifest.Name] = e.Manifest.Version
	}
	return pkgs, nil
}

// readDir returns the names of the entries of dir, or none when dir is missing.
func readDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read package tree"), "path", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
