package email

type Template string

const (
	TemplateWelcome                Template = "welcome"
	TemplateInvitation             Template = "invitation"
	TemplateInvitationExistingUser Template = "invitation_existing_user"
	TemplateGoalAlert              Template = "goal_alert"
)

// Templates lists every template shipped with the binary.
var Templates = []Template{
	TemplateWelcome,
	TemplateInvitation,
	TemplateInvitationExistingUser,
	TemplateGoalAlert,
}
