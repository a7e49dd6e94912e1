package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "github.com/kbukum/techdocs/errors"
	"github.com/kbukum/techdocs/logger"
	"github.com/kbukum/techdocs/publisher"
)

// DefaultRegion is used when neither the configuration nor the AWS
// environment names a region.
const DefaultRegion = "us-east-1"

func init() {
	publisher.RegisterFactory(publisher.TypeAWSS3, func(ctx context.Context, cfg *publisher.Config, deps publisher.Deps) (publisher.Publisher, error) {
		s3cfg := cfg.Publisher.AWSS3
		if s3cfg == nil {
			return nil, apperrors.Configuration("techdocs.publisher.awsS3", "is required when type is awsS3")
		}
		if s3cfg.Credentials.IsZero() && deps.Logger != nil {
			deps.Logger.Warn("no static AWS credentials configured, using the default credential chain",
				logger.Fields(logger.FieldBucket, s3cfg.BucketName))
		}
		return New(ctx, s3cfg, publisher.StoreOptions{
			Concurrency: cfg.Publisher.Concurrency,
			Logger:      deps.Logger,
			Metrics:     deps.Metrics,
		})
	})
}

// Publisher publishes bundles into an S3 bucket.
type Publisher struct {
	*publisher.StorePublisher
	store *Store
}

var _ publisher.Describer = (*Publisher)(nil)

// New builds an S3 client from cfg and binds a publisher to its bucket.
// Static credentials are used when set; otherwise the default AWS
// credential chain applies.
func New(ctx context.Context, cfg *publisher.AWSS3Config, opts publisher.StoreOptions) (*Publisher, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(client, cfg.BucketName, client.Options().Region, cfg.Endpoint, cfg.ForcePathStyle, opts), nil
}

// NewWithAPI binds a publisher to an existing S3 API implementation.
func NewWithAPI(api API, bucket, region, endpoint string, pathStyle bool, opts publisher.StoreOptions) *Publisher {
	store := NewStore(api, bucket, region, endpoint, pathStyle)
	return &Publisher{
		StorePublisher: publisher.NewStorePublisher(publisher.TypeAWSS3, store, opts),
		store:          store,
	}
}

// NewClient creates an S3 client for cfg.
func NewClient(ctx context.Context, cfg *publisher.AWSS3Config) (*awss3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if !cfg.Credentials.IsZero() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Credentials.AccessKeyID, cfg.Credentials.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, apperrors.Configuration("techdocs.publisher.awsS3", "load AWS configuration: "+err.Error()).WithCause(err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultRegion
	}

	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// Bucket returns the bucket name.
func (p *Publisher) Bucket() string { return p.store.bucket }

// Region returns the resolved AWS region.
func (p *Publisher) Region() string { return p.store.region }

// Describe reports the bucket and region.
func (p *Publisher) Describe() map[string]string {
	return map[string]string{"bucket": p.store.bucket, "region": p.store.region}
}
