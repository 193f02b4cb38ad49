package config

import "fmt"

// Validate reports configuration that would make the server unusable.
func (c Config) Validate() error {
	if len(c.SessionSecret) == 0 {
		return fmt.Errorf("missing required env %s", "SESSION_SECRET")
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
