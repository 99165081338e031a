package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends each fixture unchanged as a raw message.
type SES struct {
	recipients []string
	client     SendEmailAPI
}

// NewSES creates an SES sink, loading the AWS configuration from the
// environment and falling back to static credentials when configured.
func NewSES(ctx context.Context, cfg config.SESConfig) (*SES, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESWithClient(cfg.Recipients, sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESWithClient creates an SES sink with a custom client, used for testing.
func NewSESWithClient(recipients []string, client SendEmailAPI) *SES {
	return &SES{recipients: recipients, client: client}
}

// Put sends the fixture. With configured recipients the destination is
// overridden; otherwise SES takes the recipients from the headers.
func (s *SES) Put(ctx context.Context, f generate.Fixture) error {
	input := &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: f.Raw},
		},
	}
	if f.Message != nil && f.Message.From.Email != "" {
		input.FromEmailAddress = aws.String(f.Message.From.Email)
	}
	if len(s.recipients) > 0 {
		input.Destination = &types.Destination{ToAddresses: s.recipients}
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("SES API request failed: %w", err)
	}
	return nil
}

func (s *SES) Close() error { return nil }
func (s *SES) Name() string { return "ses" }
