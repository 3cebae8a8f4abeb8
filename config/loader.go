package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/iockit/logger"
)

// FileSystem is what the loader needs from the disk.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds the loader's file system and optional overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file, skips the search
	EnvFile    string // explicit .env file, skips the search
	EnvPrefix  string // bind only variables with this prefix
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the disk, mostly for tests.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix binds only environment variables starting with prefix + "_",
// with the prefix stripped: IOCKIT_CONTAINER_ID sets container.id.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// Load is the generic form of LoadConfig.
func Load[C any](serviceName string, opts ...LoaderOption) (*C, error) {
	cfg := new(C)
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig fills cfg from the service's config.yml, then from its .env
// file and the environment. Without explicit paths, cmd/<service>/ is
// searched before the working directory. A config file that exists but does
// not parse is an error; a missing one leaves cfg to defaults and the
// environment.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = firstExisting(lc.FileSystem, searchPaths(serviceName, "config.yml"))
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = firstExisting(lc.FileSystem, searchPaths(serviceName, ".env"))
	}

	v := viper.New()
	log := logger.WithComponent("config")

	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s for service %s: %w", configFile, serviceName, err)
		}
		log.Debug("config file loaded", logger.Fields("file", configFile))
	}

	// The .env file must be loaded before the environment is bound.
	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("file", envFile, "error", err.Error()))
		}
	}

	bindEnv(v, lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// searchPaths lists where fileName is looked for, in order.
func searchPaths(serviceName, fileName string) []string {
	return []string{
		filepath.Join("cmd", serviceName, fileName),
		fileName,
	}
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnv sets every environment variable over the file values under each
// key it may stand for. With a prefix, only PREFIX_* variables are bound and
// the prefix is stripped.
func bindEnv(v *viper.Viper, prefix string) {
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			stripped, found := strings.CutPrefix(name, prefix+"_")
			if !found || stripped == "" {
				continue
			}
			name = stripped
		}
		for _, key := range envKeys(name) {
			v.Set(key, value)
		}
	}
}

// envKeys returns the config keys an environment variable may stand for.
// Each underscore may separate two levels or belong to a key, with levels
// taken from the left:
//
//	CONTAINER_ALLOW_OVERWRITE -> container_allow_overwrite,
//	                             container.allow_overwrite,
//	                             container.allow.overwrite
func envKeys(name string) []string {
	parts := strings.Split(strings.ToLower(name), "_")
	keys := []string{strings.Join(parts, "_")}
	for i := 1; i < len(parts); i++ {
		keys = append(keys, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return keys
}
