// Package publish uploads the rendered map page to S3.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/stationmap/internal/config"
)

const contentTypeHTML = "text/html; charset=utf-8"

var ErrEmptyBucket = errors.New("empty bucket name")

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher writes the page to a single bucket key.
type S3Publisher struct {
	client       S3Client
	bucketName   string
	key          string
	cacheControl string
}

func NewS3Publisher(client S3Client, cfg *config.PublishConfig) *S3Publisher {
	return &S3Publisher{
		client:       client,
		bucketName:   cfg.Bucket,
		key:          cfg.Key,
		cacheControl: fmt.Sprintf("public, max-age=%d", cfg.CacheMaxAgeSeconds),
	}
}

// Publish uploads page as the configured object.
func (p *S3Publisher) Publish(ctx context.Context, page []byte) error {
	if p.bucketName == "" {
		return ErrEmptyBucket
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucketName),
		Key:          aws.String(p.key),
		Body:         bytes.NewReader(page),
		ContentType:  aws.String(contentTypeHTML),
		CacheControl: aws.String(p.cacheControl),
	})
	if err != nil {
		return fmt.Errorf("saving to S3: %w", err)
	}

	log.Info().
		Str("bucket", p.bucketName).
		Str("key", p.key).
		Int("bytes", len(page)).
		Msg("Published station map to S3")
	return nil
}

// NewS3Client creates an S3 client. A configured endpoint (e.g. MinIO or
// LocalStack) gets static test credentials unless the environment provides
// real ones.
func NewS3Client(ctx context.Context, cfg *config.PublishConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.Endpoint != "" {
		log.Debug().Str("endpoint", cfg.Endpoint).Msg("Using custom S3 endpoint")
		if cfg.Region == "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion("us-east-1"))
		}
		loadOpts = append(loadOpts, awsconfig.WithClientLogMode(aws.LogRetries))
		if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
			loadOpts = append(loadOpts,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
		}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}
