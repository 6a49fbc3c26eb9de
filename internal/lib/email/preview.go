package email

import "github.com/shopspring/decimal"

// PreviewData holds sample data used to preview each template.
var PreviewData = map[Template]map[string]any{
	TemplateWelcome: {
		"UserFirstName": "John",
	},
	TemplateInvitation: {
		"InviterName": "Jane",
		"FamilyName":  "The Does",
		"AcceptURL":   "http://localhost:3000/invitations/accept?token=preview",
		"SignupURL":   "http://localhost:3000/register?email=john%40example.com",
	},
	TemplateInvitationExistingUser: {
		"InviterName": "Jane",
		"FamilyName":  "The Does",
		"AcceptURL":   "http://localhost:3000/invitations/accept?token=preview",
	},
	TemplateGoalAlert: {
		"UserFirstName": "John",
		"Kind":          "savings",
		"Name":          "Holiday fund",
		"Target":        decimal.RequireFromString("2500"),
		"Balance":       decimal.RequireFromString("2612.40"),
	},
}

// Preview renders name with its sample data.
func (c *Client) Preview(name Template) (string, error) {
	data := map[string]any{}
	for k, v := range PreviewData[name] {
		data[k] = v
	}
	return c.Render(name, data)
}
