package config

// APIConfig configures the planning HTTP API.
type APIConfig struct {
	// Addr is the listen address, the API is disabled when "-".
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Enabled reports whether the API should listen.
func (c APIConfig) Enabled() bool { return c.Addr != "-" }
