package server

// Config holds in-memory host configuration.
type Config struct {
	// Name identifies the host in logs.
	Name string `yaml:"name" mapstructure:"name"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "testhost"
	}
}
