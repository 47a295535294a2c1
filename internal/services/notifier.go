package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/bizadmin/internal/models"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesSender is the subset of the SES client used here
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESLockoutNotifier emails a principal when their account is locked
type SESLockoutNotifier struct {
	client      sesSender
	fromAddress string
	logger      *slog.Logger
}

// NewSESLockoutNotifier creates a notifier using the default AWS credential chain
func NewSESLockoutNotifier(ctx context.Context, region, fromAddress string, logger *slog.Logger) (*SESLockoutNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newSESLockoutNotifier(ses.NewFromConfig(cfg), fromAddress, logger), nil
}

func newSESLockoutNotifier(client sesSender, fromAddress string, logger *slog.Logger) *SESLockoutNotifier {
	return &SESLockoutNotifier{client: client, fromAddress: fromAddress, logger: logger}
}

func (n *SESLockoutNotifier) NotifyLockout(ctx context.Context, p *models.Principal, until time.Time) error {
	if p.Email == "" {
		return nil
	}

	name := p.DisplayName
	if name == "" {
		name = p.Username
	}
	textBody := fmt.Sprintf(`Hello %s,

Your account was locked after several failed sign-in attempts.
You can try again after %s (UTC).

If this was not you, contact an administrator.

This is an automated message. Please do not reply to this email.
`, name, until.UTC().Format("2006-01-02 15:04"))

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{p.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Your account has been temporarily locked")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send lockout email: %w", err)
	}

	n.logger.Info("lockout notification sent",
		slog.String("principal_id", p.ID.String()),
		slog.String("email", pkglogger.SanitizedEmail(p.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
