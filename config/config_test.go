package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/kbukum/techdocs/logger"
	"github.com/kbukum/techdocs/publisher"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name 'svc', got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	logging := func(cfg ServiceConfig) ServiceConfig {
		cfg.Logging.ApplyDefaults()
		return cfg
	}
	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"valid development", logging(ServiceConfig{Name: "svc", Environment: "development"}), ""},
		{"valid production", logging(ServiceConfig{Name: "svc", Environment: "production"}), ""},
		{"missing name", logging(ServiceConfig{Environment: "production"}), "config.name is required"},
		{"invalid environment", logging(ServiceConfig{Name: "svc", Environment: "qa"}), "config.environment must be one of"},
		{"invalid log level", ServiceConfig{Name: "svc", Environment: "staging", Logging: loggingLevel("loud")}, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}
}

const sampleYAML = `
environment: staging
logging:
  level: debug
  format: json
techdocs:
  requestUrl: http://localhost:7007/api/techdocs
  publisher:
    type: awsS3
    concurrency: 4
    awsS3:
      bucketName: docs-bucket
      region: eu-west-1
      endpoint: http://minio:9000
      forcePathStyle: true
      credentials:
        accessKeyId: AKIA
        secretAccessKey: secret
observability:
  enabled: true
  interval: 30s
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "staging" || cfg.Logging.Level != "debug" {
		t.Errorf("service config = %+v", cfg.ServiceConfig)
	}
	td := cfg.TechDocs
	if td.RequestURL != "http://localhost:7007/api/techdocs" {
		t.Errorf("requestUrl = %q", td.RequestURL)
	}
	if td.Publisher.Type != publisher.TypeAWSS3 || td.Publisher.Concurrency != 4 {
		t.Errorf("publisher = %+v", td.Publisher)
	}
	s3 := td.Publisher.AWSS3
	if s3 == nil || s3.BucketName != "docs-bucket" || s3.Region != "eu-west-1" || !s3.ForcePathStyle {
		t.Fatalf("awsS3 = %+v", s3)
	}
	if s3.Credentials == nil || s3.Credentials.AccessKeyID != "AKIA" || s3.Credentials.SecretAccessKey != "secret" {
		t.Errorf("credentials = %+v", s3.Credentials)
	}
	if !cfg.Observability.Enabled || cfg.Observability.Interval != 30*time.Second {
		t.Errorf("observability = %+v", cfg.Observability)
	}
	if err := td.Validate(); err != nil {
		t.Errorf("loaded techdocs config should validate: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TECHDOCS_PUBLISHER_TYPE", "googleGcs")
	t.Setenv("TECHDOCS_PUBLISHER_GOOGLEGCS_BUCKETNAME", "from-env")

	cfg, err := Load(writeFile(t, "config.yml", sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TechDocs.Publisher.Type != publisher.TypeGoogleGCS {
		t.Errorf("type = %q, want googleGcs", cfg.TechDocs.Publisher.Type)
	}
	if g := cfg.TechDocs.Publisher.GoogleGCS; g == nil || g.BucketName != "from-env" {
		t.Errorf("googleGcs = %+v", g)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "TECHDOCS_REQUESTURL"
	t.Setenv(key, "")
	os.Unsetenv(key)

	envFile := writeFile(t, ".env", key+"=https://docs.example.com/api/techdocs\n")
	cfg, err := Load(writeFile(t, "config.yml", sampleYAML), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TechDocs.RequestURL != "https://docs.example.com/api/techdocs" {
		t.Errorf("requestUrl = %q, want value from .env", cfg.TechDocs.RequestURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yml", "techdocs:\n  requestUrl: http://localhost\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name == "" || cfg.Environment != "development" {
		t.Errorf("service defaults not applied: %+v", cfg.ServiceConfig)
	}
	if cfg.Observability.Endpoint != "localhost:4318" {
		t.Errorf("observability defaults not applied: %+v", cfg.Observability)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeFile(t, "config.yml", "techdocs: [unclosed")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg AppConfig
	err := LoadConfig("techdocs", &cfg, WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestLoadConfigWithoutFiles(t *testing.T) {
	var cfg AppConfig
	err := LoadConfig("techdocs", &cfg, WithFileSystem(&mockFS{files: map[string]bool{}}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with no files, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/techdocs/config.yml": true,
		"./config/.env":             true,
	}}
	resolver := &Resolver{FileSystem: fs, Getenv: func(string) string { return "" }}
	files := resolver.ResolveFiles("techdocs", LoaderConfig{})
	if files.ConfigFile != "./cmd/techdocs/config.yml" {
		t.Errorf("expected config file at ./cmd/techdocs/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected env file at ./config/.env, got %q", files.EnvFile)
	}

	explicit := resolver.ResolveFiles("techdocs", LoaderConfig{ConfigFile: "/etc/techdocs.yml"})
	if explicit.ConfigFile != "/etc/techdocs.yml" {
		t.Errorf("explicit config file not honored: %q", explicit.ConfigFile)
	}
}

func TestResolverPrefersServiceFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./techdocs.yml": true,
		"./config.yml":   true,
	}}
	resolver := &Resolver{FileSystem: fs, Getenv: func(string) string { return "" }}
	if got := resolver.ResolveFiles("techdocs", LoaderConfig{}).ConfigFile; got != "./techdocs.yml" {
		t.Errorf("ConfigFile = %q, want ./techdocs.yml", got)
	}
}

func TestResolverConfigEnvVar(t *testing.T) {
	resolver := &Resolver{
		FileSystem: &mockFS{files: map[string]bool{"./config.yml": true}},
		Getenv: func(key string) string {
			if key == "TECHDOCS_SERVER_CONFIG" {
				return "/srv/techdocs.yml"
			}
			return ""
		},
	}
	if got := resolver.ResolveFiles("techdocs-server", LoaderConfig{}).ConfigFile; got != "/srv/techdocs.yml" {
		t.Errorf("ConfigFile = %q, want value of TECHDOCS_SERVER_CONFIG", got)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestEnvKeyIndex(t *testing.T) {
	index := envKeyIndex(reflect.TypeOf(&AppConfig{}))

	tests := map[string]string{
		"TECHDOCS_PUBLISHER_TYPE":                          "techdocs.publisher.type",
		"TECHDOCS_REQUESTURL":                              "techdocs.requestUrl",
		"TECHDOCS_REQUEST_URL":                             "techdocs.requestUrl",
		"TECHDOCS_PUBLISHER_AWSS3_CREDENTIALS_ACCESSKEYID": "techdocs.publisher.awsS3.credentials.accessKeyId",
		"LOGGING_LEVEL":                                    "logging.level",
		"LOGGING_NO_COLOR":                                 "logging.no_color",
		"OBSERVABILITY_SAMPLERATE":                         "observability.sampleRate",
		"ENVIRONMENT":                                      "environment",
	}
	for env, want := range tests {
		if got := index[normalizeKey(env)]; got != want {
			t.Errorf("%s -> %q, want %q", env, got, want)
		}
	}

	for _, env := range []string{"PATH", "HOME", "TECHDOCS_PUBLISHER", "SERVICECONFIG_NAME"} {
		if key, ok := index[normalizeKey(env)]; ok {
			t.Errorf("%s should not map to a key, got %q", env, key)
		}
	}
}

func TestBindEnv(t *testing.T) {
	v := viper.New()
	index := envKeyIndex(reflect.TypeOf(&AppConfig{}))
	bindEnv(v, index, []string{"TECHDOCS_PUBLISHER_TYPE=awsS3", "UNRELATED=1", "MALFORMED"})

	if got := v.GetString("techdocs.publisher.type"); got != "awsS3" {
		t.Errorf("techdocs.publisher.type = %q", got)
	}
	if v.IsSet("unrelated") {
		t.Error("unrelated env var should not be bound")
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("options not applied: %+v", lc)
	}
}

func loggingLevel(level string) (c logger.Config) {
	c.ApplyDefaults()
	c.Level = level
	return c
}
