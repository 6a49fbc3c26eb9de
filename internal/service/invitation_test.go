package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
)

type invitationFixture struct {
	owner  *model.User
	family *model.Family
}

func (e *env) invitationFixture(t *testing.T) invitationFixture {
	t.Helper()
	owner := e.user(t, "alice")
	family, err := e.svc.Families.Create(context.Background(), owner.ID, &model.CreateFamilyPayload{Name: "Home"})
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return invitationFixture{owner: owner, family: family}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	httpErr, ok := err.(*errs.HTTPError)
	if !ok {
		t.Fatalf("expected *errs.HTTPError with code %s, got %T (%v)", code, err, err)
	}
	if httpErr.Code != code {
		t.Fatalf("code = %s, want %s", httpErr.Code, code)
	}
}

func TestInvitationAcceptAddsMember(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.invitationFixture(t)
	bob := e.user(t, "bob")

	inv, err := e.svc.Invitations.Create(ctx, f.owner.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: " Bob@Example.com "})
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	if inv.Email != "bob@example.com" {
		t.Errorf("email = %q, want normalized", inv.Email)
	}
	if len(inv.Token) != 2*invitationTokenBytes {
		t.Errorf("token length = %d", len(inv.Token))
	}
	if want := e.now.Add(model.InvitationTTL); !inv.ExpiresAt.Equal(want) {
		t.Errorf("expires at = %v, want %v", inv.ExpiresAt, want)
	}

	tasks := e.queue.ofType(job.TaskInvitation)
	if len(tasks) != 1 {
		t.Fatalf("invitation tasks = %d, want 1", len(tasks))
	}
	var payload job.InvitationEmailPayload
	if err := json.Unmarshal(tasks[0].Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.ExistingUser || payload.FamilyName != "Home" || payload.InviterName != "alice" || payload.Token != inv.Token {
		t.Errorf("payload = %+v", payload)
	}

	pending, err := e.svc.Invitations.List(ctx, f.owner.ID, f.family.ID)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %d, %v; want 1", len(pending), err)
	}

	family, err := e.svc.Invitations.Accept(ctx, bob.ID, &model.AcceptInvitationPayload{Token: inv.Token})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, ok := family.Member(bob.ID); !ok {
		t.Error("bob is not a member after accepting")
	}

	_, err = e.svc.Invitations.Accept(ctx, bob.ID, &model.AcceptInvitationPayload{Token: inv.Token})
	assertCode(t, err, errs.CodeInvitationAccepted)
}

func TestInvitationForNewUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.invitationFixture(t)

	if _, err := e.svc.Invitations.Create(ctx, f.owner.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: "new@example.com"}); err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	var payload job.InvitationEmailPayload
	if err := json.Unmarshal(e.queue.ofType(job.TaskInvitation)[0].Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ExistingUser {
		t.Error("existing user = true for an unknown address")
	}
}

func TestInvitationAcceptRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.invitationFixture(t)
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	inv, err := e.svc.Invitations.Create(ctx, f.owner.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: bob.Email})
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}

	_, err = e.svc.Invitations.Accept(ctx, carol.ID, &model.AcceptInvitationPayload{Token: inv.Token})
	assertCode(t, err, errs.CodeInvitationMismatch)

	_, err = e.svc.Invitations.Accept(ctx, bob.ID, &model.AcceptInvitationPayload{Token: "unknown"})
	assertStatus(t, err, http.StatusNotFound)

	e.now = e.now.Add(model.InvitationTTL + time.Minute)
	_, err = e.svc.Invitations.Accept(ctx, bob.ID, &model.AcceptInvitationPayload{Token: inv.Token})
	assertCode(t, err, errs.CodeInvitationExpired)

	n, err := e.svc.Invitations.CleanupExpired(ctx, e.now)
	if err != nil || n != 1 {
		t.Fatalf("cleanup = %d, %v; want 1, nil", n, err)
	}
}

func TestInvitationCreateRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.invitationFixture(t)
	bob := e.user(t, "bob")
	if err := (fakeFamilies{e.db}).AddMember(ctx, f.family.ID, bob.ID, model.FamilyRoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	_, err := e.svc.Invitations.Create(ctx, bob.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: "x@example.com"})
	assertStatus(t, err, http.StatusForbidden)

	_, err = e.svc.Invitations.Create(ctx, f.owner.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: bob.Email})
	assertCode(t, err, errs.CodeAlreadyFamilyMember)

	stranger := e.user(t, "mallory")
	_, err = e.svc.Invitations.Create(ctx, stranger.ID, &model.CreateInvitationPayload{FamilyID: f.family.ID, Email: "x@example.com"})
	assertStatus(t, err, http.StatusNotFound)
}

func TestFamilyOwnerRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	f := e.invitationFixture(t)
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	members := []uuid.UUID{bob.ID, f.owner.ID}
	updated, err := e.svc.Families.Update(ctx, f.owner.ID, &model.UpdateFamilyPayload{ID: f.family.ID, MemberIDs: &members})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Members) != 2 || !updated.IsOwner(f.owner.ID) {
		t.Fatalf("members = %+v", updated.Members)
	}

	assertCode(t, e.svc.Families.Leave(ctx, f.owner.ID, f.family.ID), errs.CodeOwnerCannotLeave)
	assertStatus(t, e.svc.Families.Delete(ctx, bob.ID, f.family.ID), http.StatusForbidden)
	_, err = e.svc.Families.Get(ctx, carol.ID, f.family.ID)
	assertStatus(t, err, http.StatusNotFound)

	if err := e.svc.Families.Leave(ctx, bob.ID, f.family.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if e.db.isMember(f.family.ID, bob.ID) {
		t.Error("bob is still a member after leaving")
	}
}
