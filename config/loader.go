package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvironment is used when no environment name is configured.
const DefaultEnvironment = "Development"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set are left untouched, so the real environment still wins.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Source is one configuration file in the chain.
type Source struct {
	Path     string
	Optional bool
}

// Optional returns an optional file source.
func Optional(path string) Source {
	return Source{Path: path, Optional: true}
}

// Required returns a file source whose absence is an error.
func Required(path string) Source {
	return Source{Path: path}
}

// DefaultSources returns the standard settings chain for an environment:
// base settings, environment-specific settings, then test settings.
func DefaultSources(environment string) []Source {
	if environment == "" {
		environment = DefaultEnvironment
	}
	return []Source{
		Optional("appsettings.json"),
		Optional(fmt.Sprintf("appsettings.%s.json", environment)),
		Optional("appsettings.test.json"),
	}
}

// LoaderConfig holds dependencies and the source chain.
type LoaderConfig struct {
	FileSystem  FileSystem
	Dir         string   // Base directory for relative source paths
	Environment string   // Used to build the default sources
	Sources     []Source // Replaces the default sources when set
	EnvFile     string   // Optional .env file, relative to Dir
	EnvPrefix   string   // Only variables with this prefix are bound (stripped before binding)
	SkipEnv     bool     // Do not bind process environment variables
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithDir sets the directory relative source paths are resolved against.
func WithDir(dir string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Dir = dir }
}

// WithEnvironment selects the environment-specific settings file.
func WithEnvironment(env string) LoaderOption {
	return func(lc *LoaderConfig) { lc.Environment = env }
}

// WithSources replaces the default source chain.
func WithSources(sources ...Source) LoaderOption {
	return func(lc *LoaderConfig) { lc.Sources = sources }
}

// WithEnvFile sets an optional .env file.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to variables named PREFIX_*.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithoutEnv disables environment variable binding.
func WithoutEnv() LoaderOption {
	return func(lc *LoaderConfig) { lc.SkipEnv = true }
}

// Load builds a fresh Viper instance from the configured chain.
func Load(opts ...LoaderOption) (*viper.Viper, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.Environment == "" {
		lc.Environment = DefaultEnvironment
	}
	sources := lc.Sources
	if sources == nil {
		sources = DefaultSources(lc.Environment)
	}

	v := viper.New()

	// 1. Merge file sources in order
	for _, src := range sources {
		path := resolve(lc.Dir, src.Path)
		if !lc.FileSystem.Exists(path) {
			if src.Optional {
				continue
			}
			return nil, fmt.Errorf("config: required source %s not found", path)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to merge %s: %w", path, err)
		}
	}

	// 2. Load .env into the process environment
	if lc.EnvFile != "" {
		path := resolve(lc.Dir, lc.EnvFile)
		if lc.FileSystem.Exists(path) {
			if err := lc.FileSystem.LoadEnv(path); err != nil {
				return nil, fmt.Errorf("config: failed to load env file %s: %w", path, err)
			}
		}
	}

	// 3. Bind environment variables last so they override files
	if !lc.SkipEnv {
		bindEnvVars(v, lc.EnvPrefix, os.Environ())
	}

	v.Set("environment", lc.Environment)
	return v, nil
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// bindEnvVars binds every environment variable to the nested key variants
// it could address, so APP_SERVER_PORT reaches server.port.
func bindEnvVars(v *viper.Viper, prefix string, environ []string) {
	for _, env := range environ {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		name := pair[0]
		key := name
		if prefix != "" {
			if !strings.HasPrefix(name, prefix+"_") {
				continue
			}
			key = strings.TrimPrefix(name, prefix+"_")
			if key == "" {
				continue
			}
		}

		for _, variant := range generateEnvKeyVariants(key) {
			// BindEnv only errors on an empty key list.
			_ = v.BindEnv(variant, name)
		}
	}
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// A double underscore is always a section separator.
// Examples:
//
//	AUTH_JWT_SECRET -> [auth_jwt_secret, auth.jwt.secret, auth.jwt_secret, auth_jwt.secret]
//	LOGGING__LEVEL  -> [logging.level]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	if strings.Contains(lowerKey, "__") {
		return []string{strings.ReplaceAll(lowerKey, "__", ".")}
	}

	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Progressive nesting: a.b_c_d, a_b.c_d, ...
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."))
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
