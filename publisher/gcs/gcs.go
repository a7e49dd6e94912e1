package gcs

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/publisher"
)

func init() {
	publisher.RegisterFactory(publisher.TypeGoogleGCS, func(ctx context.Context, cfg *publisher.Config, deps publisher.Deps) (publisher.Publisher, error) {
		gcfg := cfg.Publisher.GoogleGCS
		if gcfg == nil {
			return nil, apperrors.Configuration("techdocs.publisher.googleGcs", "is required when type is googleGcs")
		}
		store, err := openStore(ctx, gcfg)
		if err != nil {
			return nil, err
		}
		return NewWithStore(store, gcfg.ProjectID, gcfg.BucketName, publisher.StoreOptions{
			Concurrency: cfg.Publisher.Concurrency,
			Logger:      deps.Logger,
			Metrics:     deps.Metrics,
		}), nil
	})
}

// openStore is replaced in tests to avoid building a real client.
var openStore = func(ctx context.Context, cfg *publisher.GoogleGCSConfig) (publisher.ObjectStore, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(client, cfg.BucketName), nil
}

// Publisher publishes bundles into a Cloud Storage bucket.
type Publisher struct {
	*publisher.StorePublisher
	projectID string
	bucket    string
}

var _ publisher.Describer = (*Publisher)(nil)

// New builds a storage client from cfg and binds a publisher to its bucket.
func New(ctx context.Context, cfg *publisher.GoogleGCSConfig, opts publisher.StoreOptions) (*Publisher, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(NewStore(client, cfg.BucketName), cfg.ProjectID, cfg.BucketName, opts), nil
}

// NewWithStore binds a publisher to an existing store.
func NewWithStore(store publisher.ObjectStore, projectID, bucket string, opts publisher.StoreOptions) *Publisher {
	return &Publisher{
		StorePublisher: publisher.NewStorePublisher(publisher.TypeGoogleGCS, store, opts),
		projectID:      projectID,
		bucket:         bucket,
	}
}

// NewClient creates a storage client authenticated with the configured
// service account key. A key without a "type" member, such as "{}", carries
// no usable identity and yields an anonymous client; buckets that need
// authentication then report not ready from CheckReadiness.
func NewClient(ctx context.Context, cfg *publisher.GoogleGCSConfig) (*storage.Client, error) {
	opts, err := clientOptions(cfg.Credentials)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, apperrors.Configuration("techdocs.publisher.googleGcs.credentials", "create storage client: "+err.Error()).WithCause(err)
	}
	return client, nil
}

func clientOptions(credentials string) ([]option.ClientOption, error) {
	var key struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(credentials), &key); err != nil {
		return nil, apperrors.Configuration("techdocs.publisher.googleGcs.credentials", "must be a JSON object: "+err.Error()).WithCause(err)
	}
	if key.Type == "" {
		return []option.ClientOption{option.WithoutAuthentication()}, nil
	}
	return []option.ClientOption{option.WithCredentialsJSON([]byte(credentials))}, nil
}

// ProjectID returns the configured project.
func (p *Publisher) ProjectID() string { return p.projectID }

// Bucket returns the bucket name.
func (p *Publisher) Bucket() string { return p.bucket }

// Describe reports the project and bucket.
func (p *Publisher) Describe() map[string]string {
	return map[string]string{"project": p.projectID, "bucket": p.bucket}
}
