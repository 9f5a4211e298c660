package artifact_source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/turbot/elb-access-log-collector/rate_limiter"
)

const AwsS3BucketSourceIdentifier = "aws_s3_bucket"

// s3Client is the subset of the S3 API used by the source
type s3Client interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// AwsS3BucketSource is an [ArtifactSource] implementation that reads objects from an S3 bucket
type AwsS3BucketSource struct {
	Bucket string

	client  s3Client
	limiter *rate_limiter.APILimiter
}

// NewAwsS3BucketSource builds the S3 client from the connection. limiter may be nil.
func NewAwsS3BucketSource(ctx context.Context, conn *AwsConnection, bucket string, limiter *rate_limiter.APILimiter) (*AwsS3BucketSource, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	cfg, err := conn.GetClientConfiguration(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := conn.Endpoint()
	client := s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = conn.S3ForcePathStyle
	})

	slog.Info("Initialized AwsS3BucketSource", "bucket", bucket, "region", conn.Region, "endpoint", endpoint)

	return newAwsS3BucketSourceWithClient(client, bucket, limiter), nil
}

func newAwsS3BucketSourceWithClient(client s3Client, bucket string, limiter *rate_limiter.APILimiter) *AwsS3BucketSource {
	return &AwsS3BucketSource{
		Bucket:  bucket,
		client:  client,
		limiter: limiter,
	}
}

func (s *AwsS3BucketSource) Identifier() string {
	return AwsS3BucketSourceIdentifier
}

func (s *AwsS3BucketSource) Close() error {
	return nil
}

// ListObjects implements ArtifactSource
func (s *AwsS3BucketSource) ListObjects(ctx context.Context, prefix string, fn func(key string) error) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		var output *s3.ListObjectsV2Output
		err := s.limiter.Do(ctx, func() error {
			var err error
			output, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to get page of S3 objects for prefix %s: %w", prefix, err)
		}
		for _, object := range output.Contents {
			if err := fn(aws.ToString(object.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetObject implements ArtifactSource
func (s *AwsS3BucketSource) GetObject(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.limiter.Do(ctx, func() error {
		output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer output.Body.Close()

		data, err = io.ReadAll(output.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}
	return data, nil
}
