package service

import (
	"bytes"
	"context"
	"sort"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ledger applies balance changes. Every operation runs in one database
// transaction: rows are locked (accounts before budgets, each in id order),
// balances and history are written, goals are re-evaluated, and the goal
// alerts raised are dispatched only after commit.
type ledger struct {
	store  repository.LedgerStore
	alerts *alertDispatcher
	logger *zerolog.Logger
}

func newLedger(store repository.LedgerStore, alerts *alertDispatcher, logger *zerolog.Logger) *ledger {
	return &ledger{store: store, alerts: alerts, logger: logger}
}

// session is the state of one ledger transaction.
type session struct {
	tx       repository.LedgerTx
	accounts map[uuid.UUID]*model.Account
	budgets  map[uuid.UUID]*model.Budget
	alerts   []model.GoalAlert
}

func (l *ledger) run(ctx context.Context, fn func(ctx context.Context, s *session) error) error {
	var alerts []model.GoalAlert

	err := l.store.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		s := &session{
			tx:       tx,
			accounts: map[uuid.UUID]*model.Account{},
			budgets:  map[uuid.UUID]*model.Budget{},
		}
		if err := fn(ctx, s); err != nil {
			return err
		}
		alerts = s.alerts
		return nil
	})
	if err != nil {
		return err
	}

	if len(alerts) > 0 && l.alerts != nil {
		l.alerts.dispatch(ctx, alerts)
	}
	return nil
}

func sortedIDs(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

func (s *session) lock(ctx context.Context, accountIDs, budgetIDs []uuid.UUID) error {
	for _, id := range sortedIDs(accountIDs...) {
		if _, ok := s.accounts[id]; ok {
			continue
		}
		account, err := s.tx.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		s.accounts[id] = account
	}
	for _, id := range sortedIDs(budgetIDs...) {
		if _, ok := s.budgets[id]; ok {
			continue
		}
		budget, err := s.tx.LockBudget(ctx, id)
		if err != nil {
			return err
		}
		s.budgets[id] = budget
	}
	return nil
}

// moveAccount applies delta to a locked account, appends its history row and
// re-evaluates the account's savings goals.
func (s *session) moveAccount(ctx context.Context, id uuid.UUID, delta decimal.Decimal, date model.Date, txnID *uuid.UUID) error {
	account := s.accounts[id]
	account.Balance = account.Balance.Add(delta)

	if err := s.tx.SetAccountBalance(ctx, id, account.Balance); err != nil {
		return err
	}
	entry := &model.BalanceHistory{
		AccountID:     id,
		TransactionID: txnID,
		Balance:       account.Balance,
		Date:          date,
	}
	if err := s.tx.AppendHistory(ctx, entry); err != nil {
		return err
	}
	return s.syncSavingsGoals(ctx, account)
}

func (s *session) syncSavingsGoals(ctx context.Context, account *model.Account) error {
	goals, err := s.tx.SavingsGoalsForAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	for i := range goals {
		goal := &goals[i]
		if goal.Track(account.Balance) {
			s.alerts = append(s.alerts, model.GoalAlert{
				Kind:    model.GoalKindSavings,
				GoalID:  goal.ID,
				OwnerID: account.UserID,
				Name:    account.Name,
				Target:  goal.TargetBalance,
				Balance: account.Balance,
			})
		}
		if err := s.tx.SaveSavingsGoal(ctx, goal); err != nil {
			return err
		}
	}
	return nil
}

// moveBudget applies delta to a locked budget and mirrors the new balance
// into the budget's goals.
func (s *session) moveBudget(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	budget := s.budgets[id]
	budget.CurrentBalance = budget.CurrentBalance.Add(delta)

	if err := s.tx.UpdateBudget(ctx, budget); err != nil {
		return err
	}
	return s.syncBudgetGoals(ctx, budget)
}

func (s *session) syncBudgetGoals(ctx context.Context, budget *model.Budget) error {
	goals, err := s.tx.BudgetGoalsForBudget(ctx, budget.ID)
	if err != nil {
		return err
	}
	for i := range goals {
		goal := &goals[i]
		if goal.Track(budget.CurrentBalance) {
			s.alerts = append(s.alerts, budgetAlert(budget, goal))
		}
		if err := s.tx.SaveBudgetGoal(ctx, goal); err != nil {
			return err
		}
	}
	return nil
}

func budgetAlert(budget *model.Budget, goal *model.BudgetGoal) model.GoalAlert {
	return model.GoalAlert{
		Kind:    model.GoalKindBudget,
		GoalID:  goal.ID,
		OwnerID: budget.UserID,
		Name:    budget.Name,
		Target:  goal.TargetBalance,
		Balance: budget.CurrentBalance,
	}
}

// apply books t: one history row on its account, then the budget.
func (s *session) apply(ctx context.Context, t *model.Transaction) error {
	delta, err := t.Delta()
	if err != nil {
		return err
	}
	if err := s.moveAccount(ctx, t.AccountID, delta, t.Date, &t.ID); err != nil {
		return err
	}
	return s.moveBudget(ctx, t.BudgetID, delta)
}

// openAccount inserts account together with its opening history row.
func (l *ledger) openAccount(ctx context.Context, account *model.Account, date model.Date) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.tx.InsertAccount(ctx, account); err != nil {
			return err
		}
		return s.tx.AppendHistory(ctx, &model.BalanceHistory{
			AccountID: account.ID,
			Balance:   account.Balance,
			Date:      date,
		})
	})
}

// reviseBudget renames and/or retotals a budget. A new total shifts the
// current balance by the same difference and re-evaluates the goals.
func (l *ledger) reviseBudget(ctx context.Context, id uuid.UUID, name *string, total *decimal.Decimal) (*model.Budget, error) {
	var out model.Budget

	err := l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, nil, []uuid.UUID{id}); err != nil {
			return err
		}
		budget := s.budgets[id]
		if name != nil {
			budget.Name = *name
		}
		if total != nil {
			budget.Retotal(*total)
		}
		if err := s.tx.UpdateBudget(ctx, budget); err != nil {
			return err
		}
		if total != nil {
			if err := s.syncBudgetGoals(ctx, budget); err != nil {
				return err
			}
		}
		out = *budget
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// record inserts t and books it.
func (l *ledger) record(ctx context.Context, t *model.Transaction) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, []uuid.UUID{t.AccountID}, []uuid.UUID{t.BudgetID}); err != nil {
			return err
		}
		if err := s.tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return s.apply(ctx, t)
	})
}

// forUpdate loads and locks a transaction the user may change.
func (s *session) forUpdate(ctx context.Context, id, userID uuid.UUID) (*model.Transaction, error) {
	t, err := s.tx.GetTransactionForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, errs.NewForbiddenError("Only the author of a transaction can change it", true)
	}
	return t, nil
}

// revise reverses the effect of transaction id and books the version
// produced by mutate. Each touched account gets one history row.
func (l *ledger) revise(ctx context.Context, id, userID uuid.UUID, mutate func(t *model.Transaction)) (*model.Transaction, error) {
	var out model.Transaction

	err := l.run(ctx, func(ctx context.Context, s *session) error {
		old, err := s.forUpdate(ctx, id, userID)
		if err != nil {
			return err
		}
		updated := *old
		mutate(&updated)
		if err := s.keepPastOccurrences(ctx, &updated); err != nil {
			return err
		}

		oldDelta, err := old.Delta()
		if err != nil {
			return err
		}
		newDelta, err := updated.Delta()
		if err != nil {
			return err
		}

		if err := s.lock(ctx,
			[]uuid.UUID{old.AccountID, updated.AccountID},
			[]uuid.UUID{old.BudgetID, updated.BudgetID},
		); err != nil {
			return err
		}

		if err := s.tx.UpdateTransaction(ctx, &updated); err != nil {
			return err
		}

		if old.AccountID == updated.AccountID {
			if err := s.moveAccount(ctx, updated.AccountID, newDelta.Sub(oldDelta), updated.Date, &updated.ID); err != nil {
				return err
			}
		} else {
			if err := s.moveAccount(ctx, old.AccountID, oldDelta.Neg(), old.Date, &updated.ID); err != nil {
				return err
			}
			if err := s.moveAccount(ctx, updated.AccountID, newDelta, updated.Date, &updated.ID); err != nil {
				return err
			}
		}

		if old.BudgetID == updated.BudgetID {
			if err := s.moveBudget(ctx, updated.BudgetID, newDelta.Sub(oldDelta)); err != nil {
				return err
			}
		} else {
			if err := s.moveBudget(ctx, old.BudgetID, oldDelta.Neg()); err != nil {
				return err
			}
			if err := s.moveBudget(ctx, updated.BudgetID, newDelta); err != nil {
				return err
			}
		}

		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// keepPastOccurrences moves the next occurrence of a recurring parent past
// the occurrences it already booked.
func (s *session) keepPastOccurrences(ctx context.Context, t *model.Transaction) error {
	if !t.IsRecurring || t.RecurringType == nil || t.NextOccurrence == nil {
		return nil
	}
	last, err := s.tx.LastOccurrence(ctx, t.ID)
	if err != nil {
		return err
	}
	if last != nil && !t.NextOccurrence.After(*last) {
		t.NextOccurrence = t.RecurringType.After(t.Date, *last)
	}
	return nil
}

// remove deletes transaction id and reverses its effect.
func (l *ledger) remove(ctx context.Context, id, userID uuid.UUID) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		old, err := s.forUpdate(ctx, id, userID)
		if err != nil {
			return err
		}
		delta, err := old.Delta()
		if err != nil {
			return err
		}
		if err := s.lock(ctx, []uuid.UUID{old.AccountID}, []uuid.UUID{old.BudgetID}); err != nil {
			return err
		}
		if err := s.tx.DeleteTransaction(ctx, old.ID); err != nil {
			return err
		}
		if err := s.moveAccount(ctx, old.AccountID, delta.Neg(), old.Date, nil); err != nil {
			return err
		}
		return s.moveBudget(ctx, old.BudgetID, delta.Neg())
	})
}

// closing names the rows a purge is about to delete. Balances of closing
// accounts and budgets are not moved.
type closing struct {
	userID    uuid.UUID
	accountID uuid.UUID
}

func (c closing) account(a *model.Account) bool {
	return a.ID == c.accountID || a.UserID == c.userID
}

func (c closing) budget(b *model.Budget) bool {
	return b.UserID == c.userID
}

// purge deletes txns and reverses their effect on the accounts and budgets
// that outlive gone.
func (s *session) purge(ctx context.Context, txns []model.Transaction, gone closing) error {
	accountIDs := make([]uuid.UUID, 0, len(txns))
	budgetIDs := make([]uuid.UUID, 0, len(txns))
	for _, t := range txns {
		accountIDs = append(accountIDs, t.AccountID)
		budgetIDs = append(budgetIDs, t.BudgetID)
	}
	if err := s.lock(ctx, accountIDs, budgetIDs); err != nil {
		return err
	}

	for i := range txns {
		t := &txns[i]
		delta, err := t.Delta()
		if err != nil {
			return err
		}
		if err := s.tx.DeleteTransaction(ctx, t.ID); err != nil {
			return err
		}
		if !gone.account(s.accounts[t.AccountID]) {
			if err := s.moveAccount(ctx, t.AccountID, delta.Neg(), t.Date, nil); err != nil {
				return err
			}
		}
		if !gone.budget(s.budgets[t.BudgetID]) {
			if err := s.moveBudget(ctx, t.BudgetID, delta.Neg()); err != nil {
				return err
			}
		}
	}
	return nil
}

// closeAccount deletes an account after reversing the transactions booked
// on it, so the budgets they drew from get the amounts back.
func (l *ledger) closeAccount(ctx context.Context, id uuid.UUID) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		txns, err := s.tx.LockTransactionsOnAccount(ctx, id)
		if err != nil {
			return err
		}
		if err := s.purge(ctx, txns, closing{accountID: id}); err != nil {
			return err
		}
		return s.tx.DeleteAccount(ctx, id)
	})
}

// removeUser deletes a user after reversing their transactions on shared
// accounts and the transactions family members booked on their accounts.
func (l *ledger) removeUser(ctx context.Context, id uuid.UUID) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		txns, err := s.tx.LockTransactionsOfUser(ctx, id)
		if err != nil {
			return err
		}
		if err := s.purge(ctx, txns, closing{userID: id}); err != nil {
			return err
		}
		return s.tx.DeleteUser(ctx, id)
	})
}

// recordOccurrences books the due occurrences of a recurring parent and
// advances its next occurrence. It does nothing when another run already
// advanced the parent. It returns the number of occurrences created.
func (l *ledger) recordOccurrences(ctx context.Context, parent *model.Transaction, today model.Date, limit int) (int, error) {
	created := 0

	err := l.run(ctx, func(ctx context.Context, s *session) error {
		created = 0
		current, err := s.tx.GetTransactionForUpdate(ctx, parent.ID)
		if err != nil {
			return err
		}
		if current.NextOccurrence == nil || parent.NextOccurrence == nil || !current.NextOccurrence.Equal(*parent.NextOccurrence) {
			return nil
		}

		due, next := current.DueOccurrences(today, limit)
		if len(due) == 0 {
			return nil
		}
		if err := s.lock(ctx, []uuid.UUID{current.AccountID}, []uuid.UUID{current.BudgetID}); err != nil {
			return err
		}

		for _, date := range due {
			child := current.Occurrence(date)
			if err := s.tx.InsertTransaction(ctx, child); err != nil {
				return err
			}
			if err := s.apply(ctx, child); err != nil {
				return err
			}
			created++
		}
		return s.tx.SetNextOccurrence(ctx, current.ID, next)
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// updateBudgetGoal changes a budget goal under the budget lock. A new
// target re-evaluates it against the budget balance.
func (l *ledger) updateBudgetGoal(ctx context.Context, goal *model.BudgetGoal, mutate func(g *model.GoalState)) (*model.BudgetGoal, error) {
	var out model.BudgetGoal

	err := l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, nil, []uuid.UUID{goal.BudgetID}); err != nil {
			return err
		}
		budget := s.budgets[goal.BudgetID]

		goals, err := s.tx.BudgetGoalsForBudget(ctx, goal.BudgetID)
		if err != nil {
			return err
		}
		for i := range goals {
			g := &goals[i]
			if g.ID != goal.ID {
				continue
			}
			g.CurrentBalance = budget.CurrentBalance
			target := g.TargetBalance
			mutate(&g.GoalState)
			if !g.TargetBalance.Equal(target) && g.Retarget(g.TargetBalance) {
				s.alerts = append(s.alerts, budgetAlert(budget, g))
			}
			if err := s.tx.SaveBudgetGoal(ctx, g); err != nil {
				return err
			}
			out = *g
			return nil
		}
		return errs.NotFound("BudgetGoal")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// updateSavingsGoal is updateBudgetGoal for savings goals.
func (l *ledger) updateSavingsGoal(ctx context.Context, goal *model.SavingsGoal, mutate func(g *model.GoalState)) (*model.SavingsGoal, error) {
	var out model.SavingsGoal

	err := l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, []uuid.UUID{goal.AccountID}, nil); err != nil {
			return err
		}
		account := s.accounts[goal.AccountID]

		goals, err := s.tx.SavingsGoalsForAccount(ctx, goal.AccountID)
		if err != nil {
			return err
		}
		for i := range goals {
			g := &goals[i]
			if g.ID != goal.ID {
				continue
			}
			g.CurrentBalance = account.Balance
			target := g.TargetBalance
			mutate(&g.GoalState)
			if !g.TargetBalance.Equal(target) && g.Retarget(g.TargetBalance) {
				s.alerts = append(s.alerts, model.GoalAlert{
					Kind:    model.GoalKindSavings,
					GoalID:  g.ID,
					OwnerID: account.UserID,
					Name:    account.Name,
					Target:  g.TargetBalance,
					Balance: account.Balance,
				})
			}
			if err := s.tx.SaveSavingsGoal(ctx, g); err != nil {
				return err
			}
			out = *g
			return nil
		}
		return errs.NotFound("SavingsGoal")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// checkBudget re-evaluates every goal of a budget.
func (l *ledger) checkBudget(ctx context.Context, budgetID uuid.UUID) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, nil, []uuid.UUID{budgetID}); err != nil {
			return err
		}
		return s.syncBudgetGoals(ctx, s.budgets[budgetID])
	})
}

// checkAccount re-evaluates every savings goal of an account.
func (l *ledger) checkAccount(ctx context.Context, accountID uuid.UUID) error {
	return l.run(ctx, func(ctx context.Context, s *session) error {
		if err := s.lock(ctx, []uuid.UUID{accountID}, nil); err != nil {
			return err
		}
		return s.syncSavingsGoals(ctx, s.accounts[accountID])
	})
}
