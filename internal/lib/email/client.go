// Package email renders the embedded HTML templates and delivers them
// through Resend.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrNotConfigured is returned when no Resend API key is set.
var ErrNotConfigured = errors.New("email delivery is not configured")

// Sender is the part of the Resend client used to deliver messages.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	sender      Sender
	from        string
	frontendURL string
	templates   *template.Template
	logger      *zerolog.Logger
}

// NewClient builds a client from config. Without an API key the client still
// renders templates but every send fails with ErrNotConfigured.
func NewClient(cfg *config.EmailConfig, logger *zerolog.Logger) (*Client, error) {
	var sender Sender
	if cfg.ResendAPIKey != "" {
		sender = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return NewClientWithSender(sender, cfg, logger)
}

func NewClientWithSender(sender Sender, cfg *config.EmailConfig, logger *zerolog.Logger) (*Client, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Client{
		sender:      sender,
		from:        fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		frontendURL: cfg.FrontendURL,
		templates:   tmpl,
		logger:      logger,
	}, nil
}

func parseTemplates() (*template.Template, error) {
	funcs := sprig.FuncMap()
	funcs["money"] = formatMoney

	tmpl, err := template.New("emails").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse email templates")
	}
	return tmpl, nil
}

// formatMoney renders amounts with thousands separators and two decimals.
func formatMoney(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return x
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	default:
		return fmt.Sprint(v)
	}
	return model.FormatMoney(d)
}

// Render executes the named template with data.
func (c *Client) Render(name Template, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["FrontendURL"]; !ok {
		data["FrontendURL"] = c.frontendURL
	}

	var body bytes.Buffer
	if err := c.templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders templateName and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]any) error {
	html, err := c.Render(templateName, data)
	if err != nil {
		return err
	}

	if c.sender == nil {
		return ErrNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := c.sender.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", resp.Id).
		Msg("email sent")

	return nil
}
