package publisher

import (
	"os"
	"path/filepath"
	"slices"

	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/validation"
)

// Type identifies a storage backend.
type Type string

// Supported publisher types.
const (
	TypeLocal     Type = "local"
	TypeGoogleGCS Type = "googleGcs"
	TypeAWSS3     Type = "awsS3"
)

// Default per-publish upload concurrency by backend.
const (
	DefaultLocalConcurrency  = 8
	DefaultRemoteConcurrency = 16
)

// ConfigRoot is the configuration key the publisher settings live under.
const ConfigRoot = "techdocs"

// KnownTypes returns the recognized publisher types.
func KnownTypes() []Type {
	return []Type{TypeLocal, TypeGoogleGCS, TypeAWSS3}
}

func knownTypeNames() []string {
	names := make([]string, 0, 3)
	for _, t := range KnownTypes() {
		names = append(names, string(t))
	}
	return names
}

// DefaultLocalDirectory returns the directory used by the local backend when
// none is configured.
func DefaultLocalDirectory() string {
	return filepath.Join(os.TempDir(), "techdocs", "static", "docs")
}

// Config is the techdocs configuration block.
type Config struct {
	// RequestURL is the base URL other services use to reach techdocs.
	RequestURL string `mapstructure:"requestUrl" json:"requestUrl" validate:"required,url"`

	// Publisher selects and configures the storage backend.
	Publisher PublisherConfig `mapstructure:"publisher" json:"publisher"`
}

// PublisherConfig holds the backend discriminator and per-backend blocks.
// Only the block matching Type is read.
type PublisherConfig struct {
	Type Type `mapstructure:"type" json:"type"`

	// Concurrency bounds parallel uploads per publish. 0 selects the backend default.
	Concurrency int `mapstructure:"concurrency" json:"concurrency" validate:"min=0"`

	Local     *LocalConfig     `mapstructure:"local" json:"local,omitempty"`
	GoogleGCS *GoogleGCSConfig `mapstructure:"googleGcs" json:"googleGcs,omitempty"`
	AWSS3     *AWSS3Config     `mapstructure:"awsS3" json:"awsS3,omitempty"`
}

// LocalConfig configures the local filesystem backend.
type LocalConfig struct {
	PublishDirectory string `mapstructure:"publishDirectory" json:"publishDirectory"`
}

// GoogleGCSConfig configures the Google Cloud Storage backend.
type GoogleGCSConfig struct {
	// Credentials is a service account key as a JSON document.
	Credentials string `mapstructure:"credentials" json:"-"`
	ProjectID   string `mapstructure:"projectId" json:"projectId"`
	BucketName  string `mapstructure:"bucketName" json:"bucketName"`
}

// AWSS3Config configures the Amazon S3 backend.
type AWSS3Config struct {
	// Credentials holds static keys. Nil uses the ambient AWS credential chain.
	Credentials    *AWSCredentials `mapstructure:"credentials" json:"-"`
	BucketName     string          `mapstructure:"bucketName" json:"bucketName"`
	Region         string          `mapstructure:"region" json:"region,omitempty"`
	Endpoint       string          `mapstructure:"endpoint" json:"endpoint,omitempty"`
	ForcePathStyle bool            `mapstructure:"forcePathStyle" json:"forcePathStyle,omitempty"`
}

// AWSCredentials is a static access key pair.
type AWSCredentials struct {
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
}

// IsZero reports whether neither key is set.
func (c *AWSCredentials) IsZero() bool {
	return c == nil || (c.AccessKeyID == "" && c.SecretAccessKey == "")
}

// Clone returns a copy of c that shares no backend blocks with it.
func (c Config) Clone() Config {
	pc := &c.Publisher
	if pc.Local != nil {
		local := *pc.Local
		pc.Local = &local
	}
	if pc.GoogleGCS != nil {
		gcs := *pc.GoogleGCS
		pc.GoogleGCS = &gcs
	}
	if pc.AWSS3 != nil {
		s3 := *pc.AWSS3
		if s3.Credentials != nil {
			creds := *s3.Credentials
			s3.Credentials = &creds
		}
		pc.AWSS3 = &s3
	}
	return c
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Publisher.Type == "" {
		c.Publisher.Type = TypeLocal
	}
	if c.Publisher.Concurrency == 0 {
		c.Publisher.Concurrency = defaultConcurrency(c.Publisher.Type)
	}
	if c.Publisher.Type == TypeLocal {
		if c.Publisher.Local == nil {
			c.Publisher.Local = &LocalConfig{}
		}
		if c.Publisher.Local.PublishDirectory == "" {
			c.Publisher.Local.PublishDirectory = DefaultLocalDirectory()
		}
	}
}

func defaultConcurrency(t Type) int {
	if t == TypeLocal {
		return DefaultLocalConcurrency
	}
	return DefaultRemoteConcurrency
}

// Validate checks the configuration for the selected backend. Every failure
// is a CONFIGURATION_ERROR naming the offending field.
func (c *Config) Validate() error {
	if err := validation.Validate(c, ConfigRoot); err != nil {
		return err
	}

	if !slices.Contains(KnownTypes(), c.Publisher.Type) {
		return apperrors.UnknownPublisherType(string(c.Publisher.Type), knownTypeNames())
	}

	var v *validation.Validator
	switch c.Publisher.Type {
	case TypeLocal:
		return nil
	case TypeGoogleGCS:
		if c.Publisher.GoogleGCS == nil {
			return apperrors.Configuration("techdocs.publisher.googleGcs", "is required when type is googleGcs")
		}
		v = validateGoogleGCS(c.Publisher.GoogleGCS)
	case TypeAWSS3:
		if c.Publisher.AWSS3 == nil {
			return apperrors.Configuration("techdocs.publisher.awsS3", "is required when type is awsS3")
		}
		v = validateAWSS3(c.Publisher.AWSS3)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func validateGoogleGCS(c *GoogleGCSConfig) *validation.Validator {
	const prefix = "techdocs.publisher.googleGcs."
	return validation.New().
		Required(prefix+"credentials", c.Credentials).
		JSONObject(prefix+"credentials", c.Credentials).
		Required(prefix+"projectId", c.ProjectID).
		Required(prefix+"bucketName", c.BucketName)
}

func validateAWSS3(c *AWSS3Config) *validation.Validator {
	const prefix = "techdocs.publisher.awsS3."
	v := validation.New().
		Required(prefix+"bucketName", c.BucketName).
		AbsoluteURL(prefix+"endpoint", c.Endpoint)
	if !c.Credentials.IsZero() {
		v.Required(prefix+"credentials.accessKeyId", c.Credentials.AccessKeyID).
			Required(prefix+"credentials.secretAccessKey", c.Credentials.SecretAccessKey)
	}
	return v
}
