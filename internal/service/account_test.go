package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/google/uuid"
)

func TestBalanceAt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.books(t, "alice", "1000", "500")

	if _, err := e.svc.Transactions.Create(ctx, b.user.ID, b.payload(model.TransactionTypeExpense, "100", "2024-03-10")); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	tests := []struct {
		name string
		date *model.Date
		want string
	}{
		{"before first snapshot falls back to current", datePtr("2023-12-01"), "900"},
		{"opening balance", datePtr("2024-02-01"), "1000"},
		{"on transaction day", datePtr("2024-03-10"), "900"},
		{"defaults to today", nil, "900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.Accounts.BalanceAt(ctx, b.user.ID, &model.BalanceAtPayload{ID: b.account.ID, Date: tt.date})
			if err != nil {
				t.Fatalf("balance at: %v", err)
			}
			assertDecimal(t, "balance", got.Balance, tt.want)
			if tt.date == nil && got.Date.String() != "2024-03-15" {
				t.Errorf("date = %s, want today", got.Date)
			}
		})
	}
}

func TestCreateAccountDefaultsOpeningDateToToday(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")

	account, err := e.svc.Accounts.Create(ctx, alice.ID, &model.CreateAccountPayload{Name: " Wallet ", Balance: dec("25")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.Name != "Wallet" {
		t.Errorf("name = %q", account.Name)
	}

	history, err := e.svc.Accounts.History(ctx, alice.ID, &model.BalanceHistoryPayload{ID: account.ID})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Date.String() != "2024-03-15" {
		t.Fatalf("history = %+v, want one snapshot dated today", history)
	}
	assertDecimal(t, "opening balance", history[0].Balance, "25")

	empty, err := e.svc.Accounts.History(ctx, alice.ID, &model.BalanceHistoryPayload{ID: account.ID, End: datePtr("2024-01-01")})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("history = %v, want empty slice", empty)
	}
}

func TestAccountFamilyRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	family, err := e.svc.Families.Create(ctx, alice.ID, &model.CreateFamilyPayload{Name: "Home"})
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if err := (fakeFamilies{e.db}).AddMember(ctx, family.ID, bob.ID, model.FamilyRoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	_, err = e.svc.Accounts.Create(ctx, carol.ID, &model.CreateAccountPayload{Name: "Sneaky", FamilyID: &family.ID})
	assertStatus(t, err, http.StatusNotFound)

	unknown := uuid.New()
	_, err = e.svc.Accounts.Create(ctx, alice.ID, &model.CreateAccountPayload{Name: "Lost", FamilyID: &unknown})
	assertStatus(t, err, http.StatusNotFound)

	shared, err := e.svc.Accounts.Create(ctx, alice.ID, &model.CreateAccountPayload{Name: "Joint", FamilyID: &family.ID})
	if err != nil {
		t.Fatalf("create shared: %v", err)
	}

	accounts, err := e.svc.Accounts.List(ctx, bob.ID)
	if err != nil || len(accounts) != 1 {
		t.Fatalf("bob sees %d accounts, %v; want 1", len(accounts), err)
	}

	name := "Mine now"
	_, err = e.svc.Accounts.Update(ctx, bob.ID, &model.UpdateAccountPayload{ID: shared.ID, Name: &name})
	assertStatus(t, err, http.StatusForbidden)
	assertStatus(t, e.svc.Accounts.Delete(ctx, bob.ID, shared.ID), http.StatusForbidden)
	_, err = e.svc.Accounts.Get(ctx, carol.ID, shared.ID)
	assertStatus(t, err, http.StatusNotFound)

	updated, err := e.svc.Accounts.Update(ctx, alice.ID, &model.UpdateAccountPayload{ID: shared.ID, RemoveFamily: true})
	if err != nil {
		t.Fatalf("unshare: %v", err)
	}
	if updated.FamilyID != nil {
		t.Errorf("family id = %v, want nil", updated.FamilyID)
	}
	_, err = e.svc.Accounts.Get(ctx, bob.ID, shared.ID)
	assertStatus(t, err, http.StatusNotFound)
}
