package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Playlists.ChunkSize < 0 {
		errs = append(errs, fmt.Sprintf("playlists.chunk_size: must be positive, got %d", c.Playlists.ChunkSize))
	}

	// Imports still work without an API key; entries keep their coarse type.
	if c.TMDB.APIKey != "" && envVarPattern.MatchString(c.TMDB.APIKey) {
		errs = append(errs, fmt.Sprintf("tmdb.api_key: unresolved environment variable %s", c.TMDB.APIKey))
	}

	return errs
}
