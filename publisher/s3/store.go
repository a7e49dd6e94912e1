package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kbukum/techdocs/publisher"
)

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *awss3.HeadBucketInput, optFns ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
}

var _ API = (*awss3.Client)(nil)

// Store implements publisher.ObjectStore over one S3 bucket.
type Store struct {
	api       API
	bucket    string
	region    string
	endpoint  string
	pathStyle bool
}

var _ publisher.ObjectStore = (*Store)(nil)

// NewStore creates a store for bucket. region, endpoint and pathStyle only
// shape the URLs the store hands out.
func NewStore(api API, bucket, region, endpoint string, pathStyle bool) *Store {
	return &Store{
		api:       api,
		bucket:    bucket,
		region:    region,
		endpoint:  strings.TrimRight(endpoint, "/"),
		pathStyle: pathStyle,
	}
}

// Put uploads body to key. A single PutObject replaces the object atomically.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	in := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}

// Get opens the object at key.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", publisher.ErrObjectNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	return out.Body, nil
}

// List pages through the keys under prefix.
func (s *Store) List(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		pages := awss3.NewListObjectsV2Paginator(s.api, &awss3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for pages.HasMorePages() {
			page, err := pages.NextPage(ctx)
			if err != nil {
				yield("", fmt.Errorf("s3: list %s: %w", prefix, err))
				return
			}
			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				if strings.HasSuffix(key, "/") {
					continue
				}
				if !yield(key, nil) {
					return
				}
			}
		}
	}
}

// Check issues a HeadBucket to confirm the bucket exists and is accessible.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	switch {
	case isObjectNotFound(err) || isBucketMissing(err):
		return fmt.Errorf("s3: bucket %s does not exist: %w", s.bucket, err)
	case isAccessDenied(err):
		return fmt.Errorf("s3: access denied to bucket %s: %w", s.bucket, err)
	default:
		return fmt.Errorf("s3: head bucket %s: %w", s.bucket, err)
	}
}

// URL returns the HTTP URL of key.
func (s *Store) URL(_ context.Context, key string) (string, error) {
	switch {
	case s.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
	case s.pathStyle:
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.region, s.bucket, key), nil
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
	}
}

// isObjectNotFound matches a missing key. HeadBucket reports a missing
// bucket as NotFound too, so Check pairs it with isBucketMissing.
func isObjectNotFound(err error) bool {
	var (
		noKey    *types.NoSuchKey
		notFound *types.NotFound
	)
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	return hasAPICode(err, "NoSuchKey", "NotFound")
}

func isBucketMissing(err error) bool {
	var noBucket *types.NoSuchBucket
	return errors.As(err, &noBucket) || hasAPICode(err, "NoSuchBucket")
}

func hasAPICode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return slices.Contains(codes, apiErr.ErrorCode())
}

func isAccessDenied(err error) bool {
	return hasAPICode(err, "Forbidden", "AccessDenied")
}
