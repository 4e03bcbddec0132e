package config

// Configfile represents the structure of the config.yaml file.
type Configfile struct {
	Registry RegistryDTO `yaml:"registry"`
	Runtime  RuntimeDTO  `yaml:"runtime"`
	LinkMode string      `yaml:"link_mode"`
	Lock     LockDTO     `yaml:"lock"`
}

// RegistryDTO configures the package registry client.
type RegistryDTO struct {
	URL      string `yaml:"url"`
	Timeout  string `yaml:"timeout"`
	CacheTTL string `yaml:"cache_ttl"`
}

// RuntimeDTO configures the runtime provisioner.
type RuntimeDTO struct {
	DistURL string `yaml:"dist_url"`
}

// LockDTO configures advisory locking.
type LockDTO struct {
	PollInterval string `yaml:"poll_interval"`
}
