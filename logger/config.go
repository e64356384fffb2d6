package logger

// Config contains logging configuration. Struct tags are checked by the
// settings validation of the owning fixture.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Format    string `yaml:"format" mapstructure:"format" json:"format" validate:"omitempty,oneof=json console text pretty"`
	Output    string `yaml:"output" mapstructure:"output" json:"output" validate:"omitempty,oneof=stdout stderr discard"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color" json:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp" json:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller" json:"caller"`
}
