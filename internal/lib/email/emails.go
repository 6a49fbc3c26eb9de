package email

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

func (c *Client) SendWelcomeEmail(ctx context.Context, to, firstName string) error {
	return c.SendEmail(ctx, to, "Welcome to BudgetBud!", TemplateWelcome, map[string]any{
		"UserFirstName": firstName,
	})
}

// InvitationEmail describes a family invitation message.
type InvitationEmail struct {
	To           string
	InviterName  string
	FamilyName   string
	Token        string
	ExistingUser bool
}

// AcceptURL is the frontend link that accepts the invitation.
func (c *Client) AcceptURL(token string) string {
	return c.frontendURL + "/invitations/accept?token=" + url.QueryEscape(token)
}

func (c *Client) SendInvitationEmail(ctx context.Context, inv InvitationEmail) error {
	tmpl, subject := TemplateInvitation, "Family Invitation"
	if inv.ExistingUser {
		tmpl, subject = TemplateInvitationExistingUser, "Invitation"
	}
	return c.SendEmail(ctx, inv.To, subject, tmpl, map[string]any{
		"InviterName": inv.InviterName,
		"FamilyName":  inv.FamilyName,
		"AcceptURL":   c.AcceptURL(inv.Token),
		"SignupURL":   c.frontendURL + "/register?email=" + url.QueryEscape(inv.To),
	})
}

// GoalAlertEmail describes a goal reached notification.
type GoalAlertEmail struct {
	To        string
	FirstName string
	Kind      string
	Name      string
	Target    decimal.Decimal
	Balance   decimal.Decimal
}

func (c *Client) SendGoalAlertEmail(ctx context.Context, alert GoalAlertEmail) error {
	return c.SendEmail(ctx, alert.To, "You reached your "+alert.Kind+" goal!", TemplateGoalAlert, map[string]any{
		"UserFirstName": alert.FirstName,
		"Kind":          alert.Kind,
		"Name":          alert.Name,
		"Target":        alert.Target,
		"Balance":       alert.Balance,
	})
}
