package config

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts the file operations of the loader for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the host filesystem.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadEnv loads a .env file without overriding variables already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver locates the config and .env files of a service.
type Resolver struct {
	FileSystem FileSystem
	// Getenv reads the <SERVICE>_CONFIG override. Defaults to os.Getenv.
	Getenv func(string) string
}

// ResolvedFiles contains the resolved config and env file paths.
// Empty fields mean nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given, then the path named by
// <SERVICE>_CONFIG, then the first candidate that exists.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}

	if resolved.ConfigFile == "" {
		getenv := r.Getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		resolved.ConfigFile = getenv(envName(serviceName) + "_CONFIG")
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(service string) []string {
	return []string{
		"./" + service + ".yml",
		"./" + service + ".yaml",
		"./config.yml",
		"./config.yaml",
		"./config/" + service + ".yml",
		"./config/config.yml",
		"./cmd/" + service + "/config.yml",
		"/etc/" + service + "/config.yml",
	}
}

func envCandidates(service string) []string {
	return []string{
		"./.env." + service,
		"./.env",
		"./config/.env",
		"./cmd/" + service + "/.env",
	}
}

func envName(service string) string {
	return strings.ToUpper(strings.ReplaceAll(service, "-", "_"))
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; must exist when set
	EnvFile    string // explicit .env file
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
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

// LoadConfig reads the service's YAML file, loads its .env file and applies
// environment overrides, then decodes the result into cfg (a pointer to a
// struct with mapstructure tags).
//
// An environment variable overrides a config key when it spells the key's
// path with the separators removed, case-insensitively:
// TECHDOCS_PUBLISHER_TYPE sets techdocs.publisher.type and
// TECHDOCS_PUBLISHER_AWSS3_BUCKETNAME sets techdocs.publisher.awsS3.bucketName.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)
	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return fmt.Errorf("config file %s not found", lc.ConfigFile)
	}

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
	}

	// .env values never override the real environment.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, envKeyIndex(reflect.TypeOf(cfg)), os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode config for %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every key named by an environment variable.
func bindEnv(v *viper.Viper, index map[string]string, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key, ok := index[normalizeKey(name)]; ok {
			v.Set(key, value)
		}
	}
}

var keySeparators = strings.NewReplacer("_", "", ".", "", "-", "")

func normalizeKey(s string) string {
	return strings.ToLower(keySeparators.Replace(s))
}

// envKeyIndex maps the normalized form of every leaf config key of t to
// its dotted path. Maps and slices are leaves.
func envKeyIndex(t reflect.Type) map[string]string {
	index := make(map[string]string)
	collectKeys(t, "", index, 0)
	return index
}

const maxKeyDepth = 8

func collectKeys(t reflect.Type, prefix string, index map[string]string, depth int) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || depth > maxKeyDepth {
		return
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, squash := mapstructureName(f)
		if name == "-" {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if squash {
			collectKeys(ft, prefix, index, depth+1)
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if ft.Kind() == reflect.Struct {
			collectKeys(ft, key, index, depth+1)
			continue
		}
		index[normalizeKey(key)] = key
	}
}

func mapstructureName(f reflect.StructField) (name string, squash bool) {
	name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
	if name == "" {
		name = f.Name
	}
	return name, slices.Contains(strings.Split(opts, ","), "squash")
}
