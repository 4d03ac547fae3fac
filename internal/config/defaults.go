package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3001",
		},
		MPD: MPDConfig{
			Host: "localhost",
			Port: 6600,
		},
		Storage: StorageConfig{
			Path: "data/chime.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Server
	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}

	// MPD
	if c.MPD.Host == "" {
		c.MPD.Host = d.MPD.Host
	}
	if c.MPD.Port == 0 {
		c.MPD.Port = d.MPD.Port
	}

	// Storage
	if c.Storage.Path == "" {
		c.Storage.Path = d.Storage.Path
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
