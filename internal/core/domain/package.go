package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// PackageID identifies a store package. A scope is part of the name ("@types/node").
type PackageID struct {
	Name    string
	Version string
}

// NewPackageID validates name and version and returns the identity.
func NewPackageID(name, version string) (PackageID, error) {
	if err := ValidatePackageName(name); err != nil {
		return PackageID{}, err
	}
	if !IsExactVersion(version) {
		return PackageID{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "package identity requires a concrete version"),
			"version", version)
	}
	return PackageID{Name: name, Version: version}, nil
}

// String returns name@version.
func (id PackageID) String() string {
	return id.Name + "@" + id.Version
}

// Scope returns the "@scope" segment of a scoped name, or "".
func (id PackageID) Scope() string {
	scope, _ := SplitScope(id.Name)
	return scope
}

// BareName returns the name without its scope.
func (id PackageID) BareName() string {
	_, bare := SplitScope(id.Name)
	return bare
}

// SplitScope splits "@scope/pkg" into "@scope" and "pkg". Unscoped names return "" and the name.
func SplitScope(name string) (scope, bare string) {
	if strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i > 0 {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// ParseSlotName parses a store directory name "pkg@1.2.3" back into name and version.
func ParseSlotName(slot string) (name, version string, ok bool) {
	i := strings.LastIndexByte(slot, '@')
	if i <= 0 || i == len(slot)-1 {
		return "", "", false
	}
	return slot[:i], slot[i+1:], true
}

// ValidatePackageName rejects names that are empty or could escape the store layout.
func ValidatePackageName(name string) error {
	invalid := func(reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidPackageName, reason), "package", name), "reason", reason)
	}

	if name == "" {
		return invalid("empty name")
	}
	if strings.ContainsAny(name, "\\\x00") || strings.ContainsRune(name, ' ') {
		return invalid("name contains forbidden characters")
	}

	scope, bare := SplitScope(name)
	if strings.HasPrefix(name, "@") && scope == "" {
		return invalid("scoped name is missing its package segment")
	}
	if scope == "@" {
		return invalid("empty scope")
	}
	if bare == "" || strings.Contains(bare, "/") || strings.Contains(bare, "@") {
		return invalid("malformed package segment")
	}
	if bare == "." || bare == ".." || strings.HasPrefix(bare, ".") || strings.HasPrefix(bare, "_") {
		return invalid("package segment may not start with a dot or underscore")
	}
	return nil
}

// ParsePackageRef splits a CLI reference ("lodash", "lodash@^4", "@scope/pkg@1.0.0")
// into name and version spec. A missing spec is returned as "".
func ParsePackageRef(ref string) (name, spec string, err error) {
	offset := 0
	if strings.HasPrefix(ref, "@") {
		offset = 1
	}
	if i := strings.IndexByte(ref[offset:], '@'); i >= 0 {
		name, spec = ref[:offset+i], ref[offset+i+1:]
	} else {
		name = ref
	}
	if err := ValidatePackageName(name); err != nil {
		return "", "", err
	}
	return name, strings.TrimSpace(spec), nil
}

// Entrypoint is a named executable declared by a package.
type Entrypoint struct {
	Name string
	Path string
}

// Manifest is the subset of package.json that conde relies on.
type Manifest struct {
	Name         string
	Version      string
	Bin          []Entrypoint
	Dependencies map[string]string
	Engines      map[string]string
}

// ID returns the identity declared by the manifest.
func (m *Manifest) ID() PackageID {
	return PackageID{Name: m.Name, Version: m.Version}
}

type manifestDTO struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Bin          json.RawMessage   `json:"bin"`
	Dependencies map[string]string `json:"dependencies"`
	Engines      json.RawMessage   `json:"engines"`
}

// ParseManifest decodes a package.json document.
//
// "bin" may be a single path, which becomes one entry point named after the
// bare package name, or a map of shim names to paths.
func ParseManifest(data []byte) (*Manifest, error) {
	var dto manifestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(err, ErrManifestParseFailed.Error())
	}

	m := &Manifest{
		Name:         dto.Name,
		Version:      dto.Version,
		Dependencies: dto.Dependencies,
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}

	bin, err := parseBin(dto.Bin, m.Name)
	if err != nil {
		return nil, zerr.With(err, "package", m.Name)
	}
	m.Bin = bin

	// Old packages publish engines as an array; only the object form carries constraints.
	m.Engines = map[string]string{}
	if trimmed := bytes.TrimSpace(dto.Engines); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m.Engines); err != nil {
			return nil, zerr.Wrap(err, ErrManifestParseFailed.Error())
		}
	}

	return m, nil
}

func parseBin(raw json.RawMessage, pkgName string) ([]Entrypoint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var path string
		if err := json.Unmarshal(trimmed, &path); err != nil {
			return nil, zerr.Wrap(err, ErrManifestParseFailed.Error())
		}
		if path == "" {
			return nil, nil
		}
		_, bare := SplitScope(pkgName)
		return []Entrypoint{{Name: bare, Path: path}}, nil
	case '{':
		var named map[string]string
		if err := json.Unmarshal(trimmed, &named); err != nil {
			return nil, zerr.Wrap(err, ErrManifestParseFailed.Error())
		}
		entries := make([]Entrypoint, 0, len(named))
		for name, path := range named {
			// Shim names may be declared scoped; only the last segment lands in bin/.
			_, bare := SplitScope(name)
			if bare == "" || path == "" || strings.ContainsAny(bare, "/\\") || bare == "." || bare == ".." {
				continue
			}
			entries = append(entries, Entrypoint{Name: bare, Path: path})
		}
		slices.SortFunc(entries, func(a, b Entrypoint) int { return strings.Compare(a.Name, b.Name) })
		return entries, nil
	default:
		return nil, zerr.With(zerr.Wrap(ErrManifestParseFailed, "bin must be a string or an object"), "field", "bin")
	}
}
