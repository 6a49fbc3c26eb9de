package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	TaskWelcome    = "email:welcome"
	TaskInvitation = "email:invitation"
	TaskGoalAlert  = "email:goal_alert"
)

const (
	maxRetry    = 3
	taskTimeout = 30 * time.Second
)

type WelcomeEmailPayload struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
}

type InvitationEmailPayload struct {
	To           string `json:"to"`
	InviterName  string `json:"inviter_name"`
	FamilyName   string `json:"family_name"`
	Token        string `json:"token"`
	ExistingUser bool   `json:"existing_user"`
}

type GoalAlertPayload struct {
	To        string          `json:"to"`
	FirstName string          `json:"first_name"`
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Balance   decimal.Decimal `json:"balance"`
}

func newEmailTask(typename, queue string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		typename,
		data,
		asynq.MaxRetry(maxRetry),
		asynq.Queue(queue),
		asynq.Timeout(taskTimeout),
	), nil
}

func NewWelcomeEmailTask(to, firstName string) (*asynq.Task, error) {
	return newEmailTask(TaskWelcome, "default", WelcomeEmailPayload{
		To:        to,
		FirstName: firstName,
	})
}

func NewInvitationEmailTask(p InvitationEmailPayload) (*asynq.Task, error) {
	return newEmailTask(TaskInvitation, "critical", p)
}

func NewGoalAlertTask(p GoalAlertPayload) (*asynq.Task, error) {
	return newEmailTask(TaskGoalAlert, "default", p)
}
