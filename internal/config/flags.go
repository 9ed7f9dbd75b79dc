package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Output directory")
	flagWorkers  = flag.Int("workers", 0, "Batches compressed concurrently")
	flagZstd     = flag.Bool("zstd", false, "Also write zstd-compressed sidecars")
	flagQuiet    = flag.Bool("quiet", false, "Disable the progress bar")
	flagNoParams = flag.Bool("no-params", false, "Do not write quantization params")
	flagCharset  = flag.String("charset", "", "Text encoding of OBJ/MTL input")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagWorkers > 0 {
		cfg.Pipeline.Workers = *flagWorkers
	}
	if *flagZstd {
		cfg.Output.Zstd = true
	}
	if *flagQuiet {
		cfg.Pipeline.Progress = false
	}
	if *flagNoParams {
		cfg.Output.WriteParams = false
	}
	if *flagCharset != "" {
		cfg.Input.Charset = *flagCharset
	}
}
