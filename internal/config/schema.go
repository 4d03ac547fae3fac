package config

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	MPD     MPDConfig     `toml:"mpd"`
	Catalog CatalogConfig `toml:"catalog"`
	Bio     BioConfig     `toml:"bio"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `toml:"port"`
}

// MPDConfig holds MPD connection settings.
type MPDConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
}

// CatalogConfig holds streaming catalog API credentials.
type CatalogConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// BioConfig holds artist biography API settings.
type BioConfig struct {
	APIKey string `toml:"api_key"`
}

// StorageConfig holds local persistence settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}
