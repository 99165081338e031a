package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// PutObjectAPI is the subset of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads each fixture as <prefix>/<name>.eml.
type S3 struct {
	bucket string
	prefix string
	client PutObjectAPI
}

// NewS3 creates an S3 sink from configuration. Static credentials are used
// when configured, otherwise the default AWS credential chain. A custom
// endpoint allows S3 compatible stores such as MinIO.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	var endpoint *string
	if cfg.Endpoint != "" {
		e := cfg.Endpoint
		if !strings.HasPrefix(e, "http://") && !strings.HasPrefix(e, "https://") {
			e = "https://" + e
		}
		endpoint = aws.String(e)
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		client := s3.New(s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			BaseEndpoint: endpoint,
			UsePathStyle: cfg.UsePathStyle,
		})
		return NewS3WithClient(cfg.Bucket, cfg.Prefix, client), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = endpoint
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3WithClient(cfg.Bucket, cfg.Prefix, client), nil
}

// NewS3WithClient creates an S3 sink with a custom client, used for testing.
func NewS3WithClient(bucket, prefix string, client PutObjectAPI) *S3 {
	return &S3{bucket: bucket, prefix: strings.Trim(prefix, "/"), client: client}
}

// Key returns the object key of a fixture with the given name.
func (s *S3) Key(name string) string {
	return path.Join(s.prefix, sanitizeFilename(name)+".eml")
}

func (s *S3) Put(ctx context.Context, f generate.Fixture) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(f.Name)),
		Body:          bytes.NewReader(f.Raw),
		ContentLength: aws.Int64(int64(len(f.Raw))),
		ContentType:   aws.String("message/rfc822"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", s.Key(f.Name), err)
	}
	return nil
}

func (s *S3) Close() error { return nil }
func (s *S3) Name() string { return "s3" }
