// Package config loads playground settings with viper.
//
// Precedence, lowest first: built-in defaults, the optional playground.yaml file,
// then environment variables. Every key can be set as PLAYGROUND_<SECTION>_<KEY>
// (PLAYGROUND_EXECUTOR_TIMEOUT=5s). PORT, DB_PATH and JWT_SECRET are also accepted
// unprefixed so existing deployments keep working.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/polyglot-playground/internal/executor/local"
	"github.com/sakif/polyglot-playground/internal/executor/pipeline"
	"github.com/sakif/polyglot-playground/internal/executor/workspace"
)

const envPrefix = "PLAYGROUND"

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type ExecutorConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	WorkDir       string        `mapstructure:"work_dir"`
	LanguagesFile string        `mapstructure:"languages_file"`
}

type ToolchainsConfig struct {
	Python string `mapstructure:"python"`
	PHP    string `mapstructure:"php"`
	GCC    string `mapstructure:"gcc"`
	GXX    string `mapstructure:"gxx"`
	Go     string `mapstructure:"go"`
	Swiftc string `mapstructure:"swiftc"`
	Javac  string `mapstructure:"javac"`
	Java   string `mapstructure:"java"`
}

type AuthConfig struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	PasswordHash string `mapstructure:"password_hash"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Executor   ExecutorConfig   `mapstructure:"executor"`
	Toolchains ToolchainsConfig `mapstructure:"toolchains"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
}

// Load reads the configuration. An empty path searches for playground.yaml in the
// working directory and $HOME/.playground; a missing file there is not an error.
// A non-empty path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("playground")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.playground")
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names from the single-binary deployment.
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("storage.db_path", envPrefix+"_STORAGE_DB_PATH", "DB_PATH")
	_ = v.BindEnv("auth.jwt_secret", envPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	tc := pipeline.DefaultToolchains()

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join("data", "playground.db"))
	v.SetDefault("executor.timeout", 10*time.Second)
	v.SetDefault("executor.work_dir", "")
	v.SetDefault("executor.languages_file", "")
	v.SetDefault("toolchains.python", tc.Python)
	v.SetDefault("toolchains.php", tc.PHP)
	v.SetDefault("toolchains.gcc", tc.GCC)
	v.SetDefault("toolchains.gxx", tc.GXX)
	v.SetDefault("toolchains.go", tc.Go)
	v.SetDefault("toolchains.swiftc", tc.Swiftc)
	v.SetDefault("toolchains.javac", tc.Javac)
	v.SetDefault("toolchains.java", tc.Java)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("log.level", "info")
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Executor.Timeout <= 0 {
		return fmt.Errorf("config: executor.timeout must be positive, got %s", c.Executor.Timeout)
	}
	if c.Storage.DBPath == "" {
		return errors.New("config: storage.db_path is required")
	}
	if c.Executor.WorkDir != "" {
		info, err := os.Stat(c.Executor.WorkDir)
		if err != nil {
			return fmt.Errorf("config: executor.work_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: executor.work_dir %s is not a directory", c.Executor.WorkDir)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// AuthEnabled reports whether both the signing secret and the operator password are set.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != "" && c.Auth.PasswordHash != ""
}

// LogLevel parses log.level (debug, info, warn, error).
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}

// LocalExecutor converts the executor and toolchain sections into a local.Config.
func (c *Config) LocalExecutor() local.Config {
	return local.Config{
		Timeout:       c.Executor.Timeout,
		WorkDir:       c.Executor.WorkDir,
		LanguagesFile: c.Executor.LanguagesFile,
		Platform:      workspace.HostPlatform(),
		Toolchains: pipeline.Toolchains{
			Python: c.Toolchains.Python,
			PHP:    c.Toolchains.PHP,
			GCC:    c.Toolchains.GCC,
			GXX:    c.Toolchains.GXX,
			Go:     c.Toolchains.Go,
			Swiftc: c.Toolchains.Swiftc,
			Javac:  c.Toolchains.Javac,
			Java:   c.Toolchains.Java,
		},
	}
}
