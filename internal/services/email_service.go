package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/pluggedhq/login-server/pkg/logger"
)

// EmailSender defines the interface for sending transactional email.
// Delivery is best-effort: a send failure never rolls back rows already
// written.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, accountID, secret string) error
	SendPasswordResetEmail(ctx context.Context, email, redirectURL, accountID, secret string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	appURL      string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service. appURL must end
// with a slash; verification links are built by direct concatenation.
func NewAWSSESEmailService(region, fromAddress, appURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		appURL:      appURL,
		logger:      logger,
	}, nil
}

// SendVerificationEmail emails the signup verification link. Link shape is
// fixed for interoperability with previously issued links.
func (s *AWSSESEmailService) SendVerificationEmail(ctx context.Context, email, accountID, secret string) error {
	link := s.appURL + "user/verify/" + accountID + "/" + secret

	htmlBody := fmt.Sprintf(`<p>Verify your email address to complete the signup and login to your account.</p>
<p><b>This link expires in 6 hours</b>.</p>
<p>Press <a href=%q>here</a> to proceed.</p>`, link)

	textBody := fmt.Sprintf(`Verify your email address to complete the signup and login to your account.

This link expires in 6 hours.

Open this link to proceed:
%s
`, link)

	return s.send(ctx, email, "Verify your Email", htmlBody, textBody)
}

// SendPasswordResetEmail emails the password reset link built from the
// caller-supplied redirect base.
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, redirectURL, accountID, secret string) error {
	link := redirectURL + "/" + accountID + "/" + secret

	htmlBody := fmt.Sprintf(`<p>We heard that you lost your password.</p>
<p>Don't worry, use the link below to reset it.</p>
<p><b>This link expires in 15 minutes</b>.</p>
<p>Please paste this link inside your browser: %s</p>`, link)

	textBody := fmt.Sprintf(`We heard that you lost your password.
Don't worry, use the link below to reset it.

This link expires in 15 minutes.

%s
`, link)

	return s.send(ctx, email, "Password Reset", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, email, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("subject", subject),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
