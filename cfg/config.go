// Package cfg is an opt-in convenience for hosts that want to source
// memfs's two pool constants and its ambient logging/metrics knobs from
// the environment instead of hard-coding them in a constructor call. It
// is never read by the core Filesystem itself — nothing in this package
// touches os.Args, and there is no flag-binding surface, since this
// system has no CLI.
package cfg

import (
	"strings"

	"github.com/spf13/viper"
)

// PoolConfig holds the two compile-time-style constants §6 calls out.
type PoolConfig struct {
	MaxFiles    int   `mapstructure:"max-files"`
	FileMaxSize int64 `mapstructure:"file-max-size"`
}

// LoggingConfig selects the internal/logger output shape.
type LoggingConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
}

// MetricsConfig selects which metrics.MetricHandle backend to construct.
// Backend is one of "noop", "otel", "prometheus".
type MetricsConfig struct {
	Backend string `mapstructure:"backend"`
}

// Config is the full set of externally tunable knobs.
type Config struct {
	Pool    PoolConfig    `mapstructure:"pool"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Default returns a Config usable as-is for a small, single-process
// embedding.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			MaxFiles:    1024,
			FileMaxSize: 4 << 20, // 4 MiB
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Backend: "noop",
		},
	}
}

// Load reads MEMFS_-prefixed environment variables (e.g. MEMFS_POOL_MAX_FILES)
// over Default() via viper.AutomaticEnv, with no pflag/cobra binding step
// since this library has no CLI.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEMFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("pool.max-files", def.Pool.MaxFiles)
	v.SetDefault("pool.file-max-size", def.Pool.FileMaxSize)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("metrics.backend", def.Metrics.Backend)

	var c Config
	c.Pool.MaxFiles = v.GetInt("pool.max-files")
	c.Pool.FileMaxSize = v.GetInt64("pool.file-max-size")
	c.Logging.Format = v.GetString("logging.format")
	c.Logging.Level = v.GetString("logging.level")
	c.Logging.File = v.GetString("logging.file")
	c.Metrics.Backend = v.GetString("metrics.backend")

	return c, nil
}
