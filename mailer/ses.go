package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// sesAPI is the slice of the SES client used here
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport sends through AWS SES
type SESTransport struct {
	client sesAPI
	logger *zap.Logger
}

// NewSESTransport uses static credentials when both keys are set and the
// default AWS credential chain otherwise
func NewSESTransport(ctx context.Context, region, accessKey, secretKey string, logger *zap.Logger) (*SESTransport, error) {
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESTransport{client: sesv2.NewFromConfig(cfg), logger: logger}, nil
}

func (t *SESTransport) Name() string { return "ses" }

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses: %w", err)
	}

	if out.MessageId != nil {
		t.logger.Debug("Notification accepted by SES", zap.String("message_id", *out.MessageId))
	}
	return nil
}
