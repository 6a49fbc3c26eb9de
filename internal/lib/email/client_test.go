package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func newTestClient(t *testing.T, sender Sender) *Client {
	t.Helper()
	logger := zerolog.Nop()
	c, err := NewClientWithSender(sender, config.DefaultEmailConfig(), &logger)
	if err != nil {
		t.Fatalf("NewClientWithSender: %v", err)
	}
	return c
}

func TestPreviewRendersEveryTemplate(t *testing.T) {
	c := newTestClient(t, nil)

	for _, name := range Templates {
		t.Run(string(name), func(t *testing.T) {
			html, err := c.Preview(name)
			if err != nil {
				t.Fatalf("Preview: %v", err)
			}
			if !strings.Contains(html, "<html") || !strings.Contains(html, "</html>") {
				t.Errorf("rendered %s is not a full document", name)
			}
		})
	}
}

func TestSendWelcomeEmail(t *testing.T) {
	sender := &fakeSender{}
	c := newTestClient(t, sender)

	if err := c.SendWelcomeEmail(context.Background(), "john@example.com", "John"); err != nil {
		t.Fatalf("SendWelcomeEmail: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.From != "BudgetBud <onboarding@resend.dev>" {
		t.Errorf("from = %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "john@example.com" {
		t.Errorf("to = %v", got.To)
	}
	if !strings.Contains(got.Html, "Hi John,") {
		t.Errorf("body does not greet the user: %s", got.Html)
	}
}

func TestSendInvitationEmailPicksTemplate(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		subject  string
		signup   bool
	}{
		{"new user", false, "Family Invitation", true},
		{"existing user", true, "Invitation", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			c := newTestClient(t, sender)

			err := c.SendInvitationEmail(context.Background(), InvitationEmail{
				To:           "kid@example.com",
				InviterName:  "Jane",
				FamilyName:   "The Does",
				Token:        "abc123",
				ExistingUser: tt.existing,
			})
			if err != nil {
				t.Fatalf("SendInvitationEmail: %v", err)
			}
			got := sender.sent[0]
			if got.Subject != tt.subject {
				t.Errorf("subject = %q, want %q", got.Subject, tt.subject)
			}
			if !strings.Contains(got.Html, "/invitations/accept?token=abc123") {
				t.Errorf("body misses accept link")
			}
			if strings.Contains(got.Html, "Create an account") != tt.signup {
				t.Errorf("signup link present = %v, want %v", !tt.signup, tt.signup)
			}
		})
	}
}

func TestGoalAlertFormatsMoney(t *testing.T) {
	sender := &fakeSender{}
	c := newTestClient(t, sender)

	err := c.SendGoalAlertEmail(context.Background(), GoalAlertEmail{
		To:        "john@example.com",
		FirstName: "John",
		Kind:      "savings",
		Name:      "Holiday fund",
		Target:    decimal.RequireFromString("2500"),
		Balance:   decimal.RequireFromString("12612.4"),
	})
	if err != nil {
		t.Fatalf("SendGoalAlertEmail: %v", err)
	}
	body := sender.sent[0].Html
	for _, want := range []string{"$2,500.00", "$12,612.40", "Holiday fund"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestSendWithoutAPIKey(t *testing.T) {
	c := newTestClient(t, nil)

	err := c.SendWelcomeEmail(context.Background(), "john@example.com", "John")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSendPropagatesProviderError(t *testing.T) {
	c := newTestClient(t, &fakeSender{err: errors.New("rate limited")})

	err := c.SendWelcomeEmail(context.Background(), "john@example.com", "John")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v, want provider error", err)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{decimal.RequireFromString("0"), "0.00"},
		{decimal.RequireFromString("1234567.891"), "1,234,567.89"},
		{"-42.5", "-42.50"},
		{10, "10.00"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
