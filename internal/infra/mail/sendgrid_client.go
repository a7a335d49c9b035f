package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements usecase.Mailer.
type SendGridClient struct {
	apiKey   string
	from     string
	fromName string
	logger   *slog.Logger
}

func NewSendGridClient(apiKey, from, fromName string, logger *slog.Logger) *SendGridClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendGridClient{apiKey: apiKey, from: from, fromName: fromName, logger: logger}
}

// Send sends a plain text mail (HTMLは<pre>で包むだけ)
func (c *SendGridClient) Send(ctx context.Context, to, subject, body string) error {
	if c.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if c.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, c.from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		c.logger.Error("sendgrid send failed", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	c.logger.Info("mail sent", "status", response.StatusCode, "to", to, "subject", subject)
	return nil
}
