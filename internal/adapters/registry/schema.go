package registry

// Packument is the registry document describing every published version of a package.
type Packument struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]PackumentVersion `json:"versions"`
}

// PackumentVersion is one published version inside a Packument.
type PackumentVersion struct {
	Version string `json:"version"`
	Dist    Dist   `json:"dist"`
}

// Dist locates and authenticates a version's tarball.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}
