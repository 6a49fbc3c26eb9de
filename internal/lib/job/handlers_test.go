package job

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/budgetbud/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeMailer struct {
	welcome     []string
	invitations []email.InvitationEmail
	alerts      []email.GoalAlertEmail
	err         error
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to, _ string) error {
	f.welcome = append(f.welcome, to)
	return f.err
}

func (f *fakeMailer) SendInvitationEmail(_ context.Context, inv email.InvitationEmail) error {
	f.invitations = append(f.invitations, inv)
	return f.err
}

func (f *fakeMailer) SendGoalAlertEmail(_ context.Context, alert email.GoalAlertEmail) error {
	f.alerts = append(f.alerts, alert)
	return f.err
}

func newTestService(m Mailer) *JobService {
	logger := zerolog.Nop()
	return &JobService{mailer: m, logger: &logger}
}

func TestTaskOptions(t *testing.T) {
	task, err := NewWelcomeEmailTask("john@example.com", "John")
	if err != nil {
		t.Fatalf("NewWelcomeEmailTask: %v", err)
	}
	if task.Type() != TaskWelcome {
		t.Errorf("type = %q, want %q", task.Type(), TaskWelcome)
	}
}

func TestMuxRoutesEveryTask(t *testing.T) {
	m := &fakeMailer{}
	j := newTestService(m)
	mux := j.mux()

	welcome, _ := NewWelcomeEmailTask("a@example.com", "A")
	invite, _ := NewInvitationEmailTask(InvitationEmailPayload{To: "b@example.com", FamilyName: "Does", Token: "t"})
	alert, _ := NewGoalAlertTask(GoalAlertPayload{
		To:      "c@example.com",
		Kind:    "budget",
		Name:    "Groceries",
		Target:  decimal.RequireFromString("100"),
		Balance: decimal.RequireFromString("120.50"),
	})

	for _, task := range []*asynq.Task{welcome, invite, alert} {
		if err := mux.ProcessTask(context.Background(), task); err != nil {
			t.Fatalf("ProcessTask(%s): %v", task.Type(), err)
		}
	}

	if len(m.welcome) != 1 || m.welcome[0] != "a@example.com" {
		t.Errorf("welcome = %v", m.welcome)
	}
	if len(m.invitations) != 1 || m.invitations[0].Token != "t" {
		t.Errorf("invitations = %+v", m.invitations)
	}
	if len(m.alerts) != 1 || !m.alerts[0].Balance.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("alerts = %+v", m.alerts)
	}
}

func TestHandlerErrors(t *testing.T) {
	tests := []struct {
		name      string
		mailerErr error
		payload   []byte
		skipRetry bool
	}{
		{"provider failure retries", errors.New("timeout"), []byte(`{"to":"a@example.com"}`), false},
		{"missing api key skips retry", email.ErrNotConfigured, []byte(`{"to":"a@example.com"}`), true},
		{"bad payload skips retry", nil, []byte(`{`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newTestService(&fakeMailer{err: tt.mailerErr})

			err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, tt.payload))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tt.skipRetry {
				t.Errorf("SkipRetry = %v, want %v (err: %v)", got, tt.skipRetry, err)
			}
		})
	}
}
