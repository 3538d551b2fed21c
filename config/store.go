package config

import "fmt"

// StoreConfig selects the bin store backend.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `json:"driver"`
	// DSN is the connection string for postgres.
	DSN string `json:"dsn"`
	// Path is the database file for sqlite.
	Path string `json:"path"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.Driver == "sqlite" && c.Path == "" {
		c.Path = "dockflow.db"
	}
}

func (c StoreConfig) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("store: path is required for sqlite")
		}
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("store: dsn is required for postgres")
		}
	default:
		return fmt.Errorf("store: unknown driver %s", c.Driver)
	}
	return nil
}
