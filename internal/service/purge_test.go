package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/sqlerr"
)

// household is alice and bob sharing a family, each with books and one
// account shared with the family.
type household struct {
	alice, bob           books
	aliceJoint, bobJoint *model.Account
	aliceSpent, bobSpent *model.Transaction
}

func newHousehold(t *testing.T, e *env) household {
	t.Helper()
	ctx := context.Background()

	h := household{
		alice: e.books(t, "alice", "1000", "500"),
		bob:   e.books(t, "bob", "300", "200"),
	}
	family, err := e.svc.Families.Create(ctx, h.alice.user.ID, &model.CreateFamilyPayload{Name: "Home"})
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if err := (fakeFamilies{e.db}).AddMember(ctx, family.ID, h.bob.user.ID, model.FamilyRoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	joint := func(owner books, balance string) *model.Account {
		a, err := e.svc.Accounts.Create(ctx, owner.user.ID, &model.CreateAccountPayload{
			Name:     "Joint",
			Balance:  dec(balance),
			FamilyID: &family.ID,
			Date:     datePtr("2024-01-01"),
		})
		if err != nil {
			t.Fatalf("create joint account: %v", err)
		}
		return a
	}
	h.aliceJoint = joint(h.alice, "1000")
	h.bobJoint = joint(h.bob, "300")

	// Each spends from their own budget on the other's joint account.
	spend := func(who books, account *model.Account, amount string) *model.Transaction {
		p := who.payload(model.TransactionTypeExpense, amount, "2024-03-01")
		p.AccountID = account.ID
		txn, err := e.svc.Transactions.Create(ctx, who.user.ID, p)
		if err != nil {
			t.Fatalf("create transaction: %v", err)
		}
		return txn
	}
	h.bobSpent = spend(h.bob, h.aliceJoint, "40")
	h.aliceSpent = spend(h.alice, h.bobJoint, "25")
	return h
}

func assertHandledCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	var httpErr *errs.HTTPError
	if !errors.As(sqlerr.HandleError(err), &httpErr) {
		t.Fatalf("expected *errs.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Status != status || httpErr.Code != code {
		t.Errorf("error = %d %q, want %d %q", httpErr.Status, httpErr.Code, status, code)
	}
}

func TestDeleteBudgetOrCategoryInUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.books(t, "alice", "1000", "500")

	txn, err := e.svc.Transactions.Create(ctx, b.user.ID, b.payload(model.TransactionTypeExpense, "50", "2024-03-01"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assertHandledCode(t, e.svc.Budgets.Delete(ctx, b.user.ID, b.budget.ID), http.StatusBadRequest, "BUDGET_IN_USE")
	assertHandledCode(t, e.svc.Categories.Delete(ctx, b.user.ID, b.category.ID), http.StatusBadRequest, "CATEGORY_IN_USE")
	assertDecimal(t, "account balance", e.db.accounts[b.account.ID].Balance, "950")
	assertDecimal(t, "budget balance", e.db.budgets[b.budget.ID].CurrentBalance, "450")

	if err := e.svc.Transactions.Delete(ctx, b.user.ID, txn.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := e.svc.Budgets.Delete(ctx, b.user.ID, b.budget.ID); err != nil {
		t.Errorf("delete unused budget: %v", err)
	}
	if err := e.svc.Categories.Delete(ctx, b.user.ID, b.category.ID); err != nil {
		t.Errorf("delete unused category: %v", err)
	}
}

func TestDeleteAccountReversesItsTransactions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	h := newHousehold(t, e)

	assertDecimal(t, "bob budget before", e.db.budgets[h.bob.budget.ID].CurrentBalance, "160")

	if err := e.svc.Accounts.Delete(ctx, h.alice.user.ID, h.aliceJoint.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, ok := e.db.accounts[h.aliceJoint.ID]; ok {
		t.Error("account still exists")
	}
	if _, ok := e.db.txns[h.bobSpent.ID]; ok {
		t.Error("transaction on the deleted account still exists")
	}
	assertDecimal(t, "bob budget", e.db.budgets[h.bob.budget.ID].CurrentBalance, "200")
	assertDecimal(t, "bob joint account", e.db.accounts[h.bobJoint.ID].Balance, "275")
}

func TestDeleteUserReversesSharedActivity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	h := newHousehold(t, e)

	assertDecimal(t, "alice joint before", e.db.accounts[h.aliceJoint.ID].Balance, "960")
	assertDecimal(t, "alice budget before", e.db.budgets[h.alice.budget.ID].CurrentBalance, "475")
	historyBefore := len(e.db.historyFor(h.aliceJoint.ID))

	if err := e.svc.Users.Delete(ctx, h.bob.user.ID, h.bob.user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	// Bob's expense on alice's account is reversed with a new snapshot.
	assertDecimal(t, "alice joint", e.db.accounts[h.aliceJoint.ID].Balance, "1000")
	history := e.db.historyFor(h.aliceJoint.ID)
	if len(history) != historyBefore+1 {
		t.Fatalf("history rows = %d, want %d", len(history), historyBefore+1)
	}
	assertDecimal(t, "last snapshot", history[len(history)-1].Balance, "1000")

	// Alice's expense on bob's account is gone with the account.
	assertDecimal(t, "alice budget", e.db.budgets[h.alice.budget.ID].CurrentBalance, "500")
	if _, ok := e.db.txns[h.bobSpent.ID]; ok {
		t.Error("bob's transaction still exists")
	}
	if _, ok := e.db.txns[h.aliceSpent.ID]; ok {
		t.Error("transaction on bob's account still exists")
	}
	if _, ok := e.db.accounts[h.bobJoint.ID]; ok {
		t.Error("bob's account still exists")
	}
	if _, ok := e.db.users[h.bob.user.ID]; ok {
		t.Error("bob still exists")
	}
}
