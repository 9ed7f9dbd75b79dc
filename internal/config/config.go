// Package config handles meshpack configuration loading and management.
package config

// Config holds all pipeline settings.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig controls how model files are read.
type InputConfig struct {
	Charset string `yaml:"charset"` // Text encoding of OBJ/MTL files, "" = UTF-8
}

// OutputConfig controls where and how compressed batches are written.
type OutputConfig struct {
	Dir         string `yaml:"dir"`          // Output directory, "" = next to the input
	Extension   string `yaml:"extension"`    // Extension of the compressed stream
	Zstd        bool   `yaml:"zstd"`         // Also write a .zst sidecar
	WriteParams bool   `yaml:"write_params"` // Write the quantization params next to each stream
}

// PipelineConfig holds batch processing settings.
type PipelineConfig struct {
	Workers  int  `yaml:"workers"`  // Batches compressed concurrently
	Renumber bool `yaml:"renumber"` // Reorder vertices into first-use order when needed
	Progress bool `yaml:"progress"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:         "",
			Extension:   ".utf8",
			Zstd:        false,
			WriteParams: true,
		},
		Pipeline: PipelineConfig{
			Workers:  4,
			Renumber: true,
			Progress: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
