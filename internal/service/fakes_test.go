package service

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/deppfellow/budgetbud/internal/errs"
	"github.com/deppfellow/budgetbud/internal/lib/job"
	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// memDB is an in-memory database shared by the fake repositories.
type memDB struct {
	users        map[uuid.UUID]model.User
	families     map[uuid.UUID]model.Family
	invitations  map[uuid.UUID]model.Invitation
	categories   map[uuid.UUID]model.Category
	budgets      map[uuid.UUID]model.Budget
	accounts     map[uuid.UUID]model.Account
	txns         map[uuid.UUID]model.Transaction
	budgetGoals  map[uuid.UUID]model.BudgetGoal
	savingsGoals map[uuid.UUID]model.SavingsGoal
	dashboards   map[uuid.UUID]model.ReportDashboard
	history      []model.BalanceHistory
	revoked      map[string]time.Duration
	seq          int64
	clock        time.Time

	// failAppend makes the next AppendHistory call fail.
	failAppend bool
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]model.User{},
		families:     map[uuid.UUID]model.Family{},
		invitations:  map[uuid.UUID]model.Invitation{},
		categories:   map[uuid.UUID]model.Category{},
		budgets:      map[uuid.UUID]model.Budget{},
		accounts:     map[uuid.UUID]model.Account{},
		txns:         map[uuid.UUID]model.Transaction{},
		budgetGoals:  map[uuid.UUID]model.BudgetGoal{},
		savingsGoals: map[uuid.UUID]model.SavingsGoal{},
		dashboards:   map[uuid.UUID]model.ReportDashboard{},
		revoked:      map[string]time.Duration{},
		clock:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing creation times.
func (db *memDB) tick() time.Time {
	db.seq++
	return db.clock.Add(time.Duration(db.seq) * time.Second)
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() *memDB {
	cp := *db
	cp.users = cloneMap(db.users)
	cp.families = cloneMap(db.families)
	cp.invitations = cloneMap(db.invitations)
	cp.categories = cloneMap(db.categories)
	cp.budgets = cloneMap(db.budgets)
	cp.accounts = cloneMap(db.accounts)
	cp.txns = cloneMap(db.txns)
	cp.budgetGoals = cloneMap(db.budgetGoals)
	cp.savingsGoals = cloneMap(db.savingsGoals)
	cp.dashboards = cloneMap(db.dashboards)
	cp.history = append([]model.BalanceHistory(nil), db.history...)
	cp.revoked = cloneMap(db.revoked)
	return &cp
}

func (db *memDB) isMember(familyID, userID uuid.UUID) bool {
	f, ok := db.families[familyID]
	if !ok {
		return false
	}
	_, ok = f.Member(userID)
	return ok
}

func (db *memDB) visible(userID, ownerID uuid.UUID, familyID *uuid.UUID) bool {
	return ownerID == userID || (familyID != nil && db.isMember(*familyID, userID))
}

func (db *memDB) historyFor(accountID uuid.UUID) []model.BalanceHistory {
	var out []model.BalanceHistory
	for _, h := range db.history {
		if h.AccountID == accountID {
			out = append(out, h)
		}
	}
	model.SortHistory(out)
	return out
}

// users

type fakeUsers struct{ db *memDB }

func (r fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.db.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return errs.BadRequest("USER_ALREADY_EXISTS", "A User with this Username already exists")
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = r.db.tick()
	u.UpdatedAt = u.CreatedAt
	r.db.users[u.ID] = *u
	return nil
}

func (r fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, errs.NotFound("User")
	}
	return &u, nil
}

func (r fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errs.NotFound("User")
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.NotFound("User")
}

func (r fakeUsers) ListVisible(_ context.Context, userID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range r.db.users {
		if u.ID == userID {
			out = append(out, u)
			continue
		}
		for _, f := range r.db.families {
			_, me := f.Member(userID)
			_, them := f.Member(u.ID)
			if me && them {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (r fakeUsers) Update(_ context.Context, u *model.User) error {
	if _, ok := r.db.users[u.ID]; !ok {
		return errs.NotFound("User")
	}
	r.db.users[u.ID] = *u
	return nil
}

// families

type fakeFamilies struct{ db *memDB }

func (r fakeFamilies) Create(_ context.Context, f *model.Family, ownerID uuid.UUID) error {
	f.ID = uuid.New()
	f.CreatedAt = r.db.tick()
	f.UpdatedAt = f.CreatedAt
	f.Members = []model.FamilyMember{r.member(ownerID, model.FamilyRoleOwner)}
	r.db.families[f.ID] = *f
	return nil
}

func (r fakeFamilies) member(userID uuid.UUID, role model.FamilyRole) model.FamilyMember {
	u := r.db.users[userID]
	return model.FamilyMember{
		UserID:   userID,
		Username: u.Username,
		Email:    u.Email,
		Role:     role,
		JoinedAt: r.db.tick(),
	}
}

func (r fakeFamilies) GetByID(_ context.Context, id uuid.UUID) (*model.Family, error) {
	f, ok := r.db.families[id]
	if !ok {
		return nil, errs.NotFound("Family")
	}
	f.Members = append([]model.FamilyMember(nil), f.Members...)
	return &f, nil
}

func (r fakeFamilies) ListForUser(_ context.Context, userID uuid.UUID) ([]model.Family, error) {
	var out []model.Family
	for _, f := range r.db.families {
		if _, ok := f.Member(userID); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r fakeFamilies) Update(_ context.Context, f *model.Family, memberIDs []uuid.UUID) error {
	stored, ok := r.db.families[f.ID]
	if !ok {
		return errs.NotFound("Family")
	}
	stored.Name = f.Name
	if memberIDs != nil {
		var members []model.FamilyMember
		for _, m := range stored.Members {
			if m.Role == model.FamilyRoleOwner {
				members = append(members, m)
			}
		}
		for _, id := range memberIDs {
			members = append(members, r.member(id, model.FamilyRoleMember))
		}
		stored.Members = members
	}
	r.db.families[f.ID] = stored
	*f = stored
	return nil
}

func (r fakeFamilies) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.db.families, id)
	return nil
}

func (r fakeFamilies) AddMember(_ context.Context, familyID, userID uuid.UUID, role model.FamilyRole) error {
	f := r.db.families[familyID]
	if _, ok := f.Member(userID); ok {
		return nil
	}
	f.Members = append(f.Members, r.member(userID, role))
	r.db.families[familyID] = f
	return nil
}

func (r fakeFamilies) RemoveMember(_ context.Context, familyID, userID uuid.UUID) error {
	f := r.db.families[familyID]
	var members []model.FamilyMember
	for _, m := range f.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	f.Members = members
	r.db.families[familyID] = f
	return nil
}

func (r fakeFamilies) IsMember(_ context.Context, familyID, userID uuid.UUID) (bool, error) {
	return r.db.isMember(familyID, userID), nil
}

// invitations

type fakeInvitations struct{ db *memDB }

func (r fakeInvitations) Create(_ context.Context, inv *model.Invitation) error {
	inv.ID = uuid.New()
	inv.CreatedAt = r.db.tick()
	r.db.invitations[inv.ID] = *inv
	return nil
}

func (r fakeInvitations) GetByID(_ context.Context, id uuid.UUID) (*model.Invitation, error) {
	inv, ok := r.db.invitations[id]
	if !ok {
		return nil, errs.NotFound("Invitation")
	}
	return &inv, nil
}

func (r fakeInvitations) GetByToken(_ context.Context, token string) (*model.Invitation, error) {
	for _, inv := range r.db.invitations {
		if inv.Token == token {
			return &inv, nil
		}
	}
	return nil, errs.NotFound("Invitation")
}

func (r fakeInvitations) ListPending(_ context.Context, familyID uuid.UUID, now time.Time) ([]model.Invitation, error) {
	var out []model.Invitation
	for _, inv := range r.db.invitations {
		if inv.FamilyID == familyID && !inv.IsAccepted() && !inv.IsExpired(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r fakeInvitations) Accept(ctx context.Context, inv *model.Invitation, userID uuid.UUID, at time.Time) error {
	stored := r.db.invitations[inv.ID]
	if stored.IsAccepted() {
		return errs.NotFound("Invitation")
	}
	if err := (fakeFamilies{r.db}).AddMember(ctx, inv.FamilyID, userID, model.FamilyRoleMember); err != nil {
		return err
	}
	stored.AcceptedAt = &at
	r.db.invitations[inv.ID] = stored
	*inv = stored
	return nil
}

func (r fakeInvitations) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.db.invitations, id)
	return nil
}

func (r fakeInvitations) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, inv := range r.db.invitations {
		if !inv.IsAccepted() && inv.IsExpired(now) {
			delete(r.db.invitations, id)
			n++
		}
	}
	return n, nil
}

// categories

type fakeCategories struct{ db *memDB }

func (r fakeCategories) Create(_ context.Context, c *model.Category) error {
	c.ID = uuid.New()
	r.db.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Category, error) {
	c, ok := r.db.categories[id]
	if !ok || c.UserID != userID {
		return nil, errs.NotFound("Category")
	}
	return &c, nil
}

func (r fakeCategories) List(_ context.Context, userID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.db.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r fakeCategories) Update(_ context.Context, c *model.Category) error {
	r.db.categories[c.ID] = *c
	return nil
}

func (r fakeCategories) Delete(_ context.Context, userID, id uuid.UUID) error {
	if c, ok := r.db.categories[id]; !ok || c.UserID != userID {
		return errs.NotFound("Category")
	}
	if r.db.referenced(func(t model.Transaction) bool { return t.CategoryID == id }) {
		return restrictErr("categories")
	}
	delete(r.db.categories, id)
	return nil
}

// budgets

type fakeBudgets struct{ db *memDB }

func (r fakeBudgets) Create(_ context.Context, b *model.Budget) error {
	b.ID = uuid.New()
	b.CreatedAt = r.db.tick()
	b.UpdatedAt = b.CreatedAt
	r.db.budgets[b.ID] = *b
	return nil
}

func (r fakeBudgets) GetByID(_ context.Context, userID, id uuid.UUID) (*model.Budget, error) {
	b, ok := r.db.budgets[id]
	if !ok || b.UserID != userID {
		return nil, errs.NotFound("Budget")
	}
	return &b, nil
}

func (r fakeBudgets) List(_ context.Context, userID uuid.UUID) ([]model.Budget, error) {
	var out []model.Budget
	for _, b := range r.db.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeBudgets) Delete(_ context.Context, userID, id uuid.UUID) error {
	if b, ok := r.db.budgets[id]; !ok || b.UserID != userID {
		return errs.NotFound("Budget")
	}
	if r.db.referenced(func(t model.Transaction) bool { return t.BudgetID == id }) {
		return restrictErr("budgets")
	}
	delete(r.db.budgets, id)
	return nil
}

// accounts

type fakeAccounts struct{ db *memDB }

func (r fakeAccounts) GetVisible(_ context.Context, userID, id uuid.UUID) (*model.Account, error) {
	a, ok := r.db.accounts[id]
	if !ok || !r.db.visible(userID, a.UserID, a.FamilyID) {
		return nil, errs.NotFound("Account")
	}
	return &a, nil
}

func (r fakeAccounts) ListVisible(_ context.Context, userID uuid.UUID) ([]model.Account, error) {
	var out []model.Account
	for _, a := range r.db.accounts {
		if r.db.visible(userID, a.UserID, a.FamilyID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r fakeAccounts) Update(_ context.Context, a *model.Account) error {
	r.db.accounts[a.ID] = *a
	return nil
}

func (r fakeAccounts) History(_ context.Context, accountID uuid.UUID, start, end *model.Date) ([]model.BalanceHistory, error) {
	var out []model.BalanceHistory
	for _, h := range r.db.historyFor(accountID) {
		if start != nil && h.Date.Before(*start) {
			continue
		}
		if end != nil && h.Date.After(*end) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (r fakeAccounts) BalanceOn(_ context.Context, accountID uuid.UUID, date model.Date) (*decimal.Decimal, error) {
	var found *decimal.Decimal
	for _, h := range r.db.historyFor(accountID) {
		if !h.Date.After(date) {
			b := h.Balance
			found = &b
		}
	}
	return found, nil
}

func (r fakeAccounts) TotalBalance(_ context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range r.db.accounts {
		if r.db.visible(userID, a.UserID, a.FamilyID) {
			total = total.Add(a.Balance)
		}
	}
	return total, nil
}

// goals

type fakeGoals struct{ db *memDB }

func (r fakeGoals) CreateBudgetGoal(_ context.Context, g *model.BudgetGoal) error {
	g.ID = uuid.New()
	r.db.budgetGoals[g.ID] = *g
	return nil
}

func (r fakeGoals) GetBudgetGoal(_ context.Context, id uuid.UUID) (*model.BudgetGoal, error) {
	g, ok := r.db.budgetGoals[id]
	if !ok {
		return nil, errs.NotFound("BudgetGoal")
	}
	return &g, nil
}

func (r fakeGoals) ListBudgetGoals(_ context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error) {
	var out []model.BudgetGoal
	for _, g := range r.db.budgetGoals {
		if g.BudgetID == budgetID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r fakeGoals) DeleteBudgetGoal(_ context.Context, id uuid.UUID) error {
	delete(r.db.budgetGoals, id)
	return nil
}

func (r fakeGoals) BudgetIDsWithGoalsDue(_ context.Context, date model.Date) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, g := range r.db.budgetGoals {
		if g.EndDate != nil && g.EndDate.Equal(date) {
			ids = append(ids, g.BudgetID)
		}
	}
	return sortedIDs(ids...), nil
}

func (r fakeGoals) CreateSavingsGoal(_ context.Context, g *model.SavingsGoal) error {
	g.ID = uuid.New()
	r.db.savingsGoals[g.ID] = *g
	return nil
}

func (r fakeGoals) GetSavingsGoal(_ context.Context, id uuid.UUID) (*model.SavingsGoal, error) {
	g, ok := r.db.savingsGoals[id]
	if !ok {
		return nil, errs.NotFound("SavingsGoal")
	}
	return &g, nil
}

func (r fakeGoals) ListSavingsGoals(_ context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error) {
	var out []model.SavingsGoal
	for _, g := range r.db.savingsGoals {
		if g.AccountID == accountID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r fakeGoals) DeleteSavingsGoal(_ context.Context, id uuid.UUID) error {
	delete(r.db.savingsGoals, id)
	return nil
}

func (r fakeGoals) AccountIDsWithGoalsDue(_ context.Context, date model.Date) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, g := range r.db.savingsGoals {
		if g.EndDate != nil && g.EndDate.Equal(date) {
			ids = append(ids, g.AccountID)
		}
	}
	return sortedIDs(ids...), nil
}

// transactions

type fakeTxns struct{ db *memDB }

func (r fakeTxns) GetVisible(_ context.Context, userID, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.db.txns[id]
	if !ok || !r.db.visible(userID, t.UserID, t.FamilyID) {
		return nil, errs.NotFound("Transaction")
	}
	return &t, nil
}

func (db *memDB) filtered(userID uuid.UUID, f model.TransactionFilter) []model.Transaction {
	var out []model.Transaction
	for _, t := range db.txns {
		switch {
		case !db.visible(userID, t.UserID, t.FamilyID),
			f.Start != nil && t.Date.Before(*f.Start),
			f.End != nil && t.Date.After(*f.End),
			f.Type != nil && t.TransactionType != *f.Type,
			f.AccountID != nil && t.AccountID != *f.AccountID,
			f.BudgetID != nil && t.BudgetID != *f.BudgetID,
			f.CategoryID != nil && t.CategoryID != *f.CategoryID:
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r fakeTxns) List(_ context.Context, userID uuid.UUID, f model.TransactionFilter) ([]model.Transaction, error) {
	return paginate(r.db.filtered(userID, f), f.Limit, f.Offset), nil
}

func (r fakeTxns) Count(_ context.Context, userID uuid.UUID, f model.TransactionFilter) (int64, error) {
	return int64(len(r.db.filtered(userID, f))), nil
}

func (r fakeTxns) ListDueRecurring(_ context.Context, date model.Date) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range r.db.txns {
		if t.IsRecurring && t.NextOccurrence != nil && !t.NextOccurrence.After(date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// reports

var fakeCatalog = []model.Report{
	{ID: 1, Name: model.ReportSummary, DisplayName: "Summary"},
	{ID: 2, Name: model.ReportSpendingByCategory, DisplayName: "Spending by category"},
	{ID: 3, Name: model.ReportIncomeVsExpense, DisplayName: "Income vs expense"},
	{ID: 4, Name: model.ReportBudgetOverview, DisplayName: "Budget overview"},
	{ID: 5, Name: model.ReportBalanceHistory, DisplayName: "Balance history"},
}

type fakeReports struct{ db *memDB }

func (r fakeReports) ListReports(context.Context) ([]model.Report, error) {
	return fakeCatalog, nil
}

func (r fakeReports) GetReportByName(_ context.Context, name string) (*model.Report, error) {
	for _, rep := range fakeCatalog {
		if rep.Name == name {
			return &rep, nil
		}
	}
	return nil, errs.NotFound("Report")
}

func (r fakeReports) GetReport(_ context.Context, id int) (*model.Report, error) {
	for _, rep := range fakeCatalog {
		if rep.ID == id {
			return &rep, nil
		}
	}
	return nil, errs.NotFound("Report")
}

func (r fakeReports) ListDashboards(_ context.Context, userID uuid.UUID) ([]model.ReportDashboard, error) {
	var out []model.ReportDashboard
	for _, d := range r.db.dashboards {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r fakeReports) GetDashboard(_ context.Context, userID, id uuid.UUID) (*model.ReportDashboard, error) {
	d, ok := r.db.dashboards[id]
	if !ok || d.UserID != userID {
		return nil, errs.NotFound("ReportDashboard")
	}
	return &d, nil
}

func (r fakeReports) CreateDashboard(_ context.Context, d *model.ReportDashboard) error {
	d.ID = uuid.New()
	d.CreatedAt = r.db.tick()
	r.db.dashboards[d.ID] = *d
	return nil
}

func (r fakeReports) UpdateDashboard(_ context.Context, d *model.ReportDashboard) error {
	r.db.dashboards[d.ID] = *d
	return nil
}

func (r fakeReports) DeleteDashboard(_ context.Context, userID, id uuid.UUID) error {
	if d, ok := r.db.dashboards[id]; !ok || d.UserID != userID {
		return errs.NotFound("ReportDashboard")
	}
	delete(r.db.dashboards, id)
	return nil
}

func (r fakeReports) Totals(_ context.Context, userID uuid.UUID, f model.TransactionFilter) (repository.TypeTotals, error) {
	totals := repository.TypeTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range r.db.filtered(userID, f) {
		if t.TransactionType == model.TransactionTypeIncome {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
		totals.Count++
	}
	return totals, nil
}

func (r fakeReports) SpendingByCategory(_ context.Context, userID uuid.UUID, f model.TransactionFilter) ([]model.CategoryTotal, error) {
	expense := model.TransactionTypeExpense
	f.Type = &expense

	byID := map[uuid.UUID]*model.CategoryTotal{}
	var out []*model.CategoryTotal
	for _, t := range r.db.filtered(userID, f) {
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &model.CategoryTotal{CategoryID: t.CategoryID, CategoryName: r.db.categories[t.CategoryID].Name, Total: decimal.Zero}
			byID[t.CategoryID] = ct
			out = append(out, ct)
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })

	res := make([]model.CategoryTotal, len(out))
	for i, ct := range out {
		res[i] = *ct
	}
	return res, nil
}

func (r fakeReports) DailyTotals(_ context.Context, userID uuid.UUID, f model.TransactionFilter) ([]model.DailyTotal, error) {
	byDay := map[string]*model.DailyTotal{}
	var out []*model.DailyTotal
	for _, t := range r.db.filtered(userID, f) {
		d, ok := byDay[t.Date.String()]
		if !ok {
			d = &model.DailyTotal{Date: t.Date, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[t.Date.String()] = d
			out = append(out, d)
		}
		if t.TransactionType == model.TransactionTypeIncome {
			d.Income = d.Income.Add(t.Amount)
		} else {
			d.Expense = d.Expense.Add(t.Amount)
		}
	}
	res := make([]model.DailyTotal, len(out))
	for i, d := range out {
		res[i] = *d
	}
	return res, nil
}

func (r fakeReports) TableRows(_ context.Context, userID uuid.UUID, f model.TransactionFilter) ([]model.TableRow, error) {
	running := decimal.Zero
	var rows []model.TableRow
	for _, t := range r.db.filtered(userID, f) {
		delta, _ := t.Delta()
		running = running.Add(delta)
		rows = append(rows, model.TableRow{
			Transaction:  t,
			CategoryName: r.db.categories[t.CategoryID].Name,
			AccountName:  r.db.accounts[t.AccountID].Name,
			SignedAmount: delta,
			RunningTotal: running,
		})
	}
	return paginate(rows, f.Limit, f.Offset), nil
}

// restrictErr is the error Postgres raises when a referenced row is deleted.
func restrictErr(table string) error {
	return &pgconn.PgError{
		Code:      "23503",
		TableName: table,
		Message:   `update or delete on table "` + table + `" violates foreign key constraint on table "transactions"`,
	}
}

func (db *memDB) referenced(match func(t model.Transaction) bool) bool {
	for _, t := range db.txns {
		if match(t) {
			return true
		}
	}
	return false
}

func (db *memDB) sortedTxns(match func(t model.Transaction) bool) []model.Transaction {
	out := []model.Transaction{}
	for _, t := range db.txns {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func (db *memDB) dropAccount(id uuid.UUID) {
	delete(db.accounts, id)
	kept := db.history[:0]
	for _, h := range db.history {
		if h.AccountID != id {
			kept = append(kept, h)
		}
	}
	db.history = kept
}

// ledger

type fakeLedger struct{ db *memDB }

func (l fakeLedger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	saved := l.db.snapshot()
	if err := fn(ctx, fakeLedgerTx{l.db}); err != nil {
		*l.db = *saved
		l.db.failAppend = false
		return err
	}
	return nil
}

type fakeLedgerTx struct{ db *memDB }

func (tx fakeLedgerTx) LockAccount(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := tx.db.accounts[id]
	if !ok {
		return nil, errs.NotFound("Account")
	}
	return &a, nil
}

func (tx fakeLedgerTx) LockBudget(_ context.Context, id uuid.UUID) (*model.Budget, error) {
	b, ok := tx.db.budgets[id]
	if !ok {
		return nil, errs.NotFound("Budget")
	}
	return &b, nil
}

func (tx fakeLedgerTx) InsertAccount(_ context.Context, a *model.Account) error {
	a.ID = uuid.New()
	a.CreatedAt = tx.db.tick()
	a.UpdatedAt = a.CreatedAt
	tx.db.accounts[a.ID] = *a
	return nil
}

func (tx fakeLedgerTx) SetAccountBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	a := tx.db.accounts[id]
	a.Balance = balance
	tx.db.accounts[id] = a
	return nil
}

func (tx fakeLedgerTx) UpdateBudget(_ context.Context, b *model.Budget) error {
	tx.db.budgets[b.ID] = *b
	return nil
}

func (tx fakeLedgerTx) AppendHistory(_ context.Context, h *model.BalanceHistory) error {
	if tx.db.failAppend {
		tx.db.failAppend = false
		return errs.NewInternalServerError()
	}
	tx.db.seq++
	h.ID = tx.db.seq
	h.CreatedAt = tx.db.tick()
	tx.db.history = append(tx.db.history, *h)
	return nil
}

func (tx fakeLedgerTx) GetTransactionForUpdate(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, ok := tx.db.txns[id]
	if !ok {
		return nil, errs.NotFound("Transaction")
	}
	return &t, nil
}

func (tx fakeLedgerTx) InsertTransaction(_ context.Context, t *model.Transaction) error {
	t.ID = uuid.New()
	t.CreatedAt = tx.db.tick()
	t.UpdatedAt = t.CreatedAt
	tx.db.txns[t.ID] = *t
	return nil
}

func (tx fakeLedgerTx) UpdateTransaction(_ context.Context, t *model.Transaction) error {
	t.UpdatedAt = tx.db.tick()
	tx.db.txns[t.ID] = *t
	return nil
}

func (tx fakeLedgerTx) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	delete(tx.db.txns, id)
	for i, h := range tx.db.history {
		if h.TransactionID != nil && *h.TransactionID == id {
			tx.db.history[i].TransactionID = nil
		}
	}
	return nil
}

func (tx fakeLedgerTx) SetNextOccurrence(_ context.Context, id uuid.UUID, next *model.Date) error {
	t := tx.db.txns[id]
	t.NextOccurrence = next
	tx.db.txns[id] = t
	return nil
}

func (tx fakeLedgerTx) LastOccurrence(_ context.Context, parentID uuid.UUID) (*model.Date, error) {
	var last *model.Date
	for _, t := range tx.db.txns {
		if t.RecurringParentID == nil || *t.RecurringParentID != parentID {
			continue
		}
		if last == nil || t.Date.After(*last) {
			d := t.Date
			last = &d
		}
	}
	return last, nil
}

func (tx fakeLedgerTx) LockTransactionsOnAccount(_ context.Context, accountID uuid.UUID) ([]model.Transaction, error) {
	return tx.db.sortedTxns(func(t model.Transaction) bool { return t.AccountID == accountID }), nil
}

func (tx fakeLedgerTx) LockTransactionsOfUser(_ context.Context, userID uuid.UUID) ([]model.Transaction, error) {
	return tx.db.sortedTxns(func(t model.Transaction) bool {
		return t.UserID == userID || tx.db.accounts[t.AccountID].UserID == userID
	}), nil
}

func (tx fakeLedgerTx) DeleteAccount(_ context.Context, id uuid.UUID) error {
	if _, ok := tx.db.accounts[id]; !ok {
		return errs.NotFound("Account")
	}
	if tx.db.referenced(func(t model.Transaction) bool { return t.AccountID == id }) {
		return restrictErr("accounts")
	}
	tx.db.dropAccount(id)
	return nil
}

func (tx fakeLedgerTx) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := tx.db.users[id]; !ok {
		return errs.NotFound("User")
	}
	if tx.db.referenced(func(t model.Transaction) bool { return t.UserID == id }) {
		return restrictErr("users")
	}
	for accountID, a := range tx.db.accounts {
		if a.UserID == id {
			if tx.db.referenced(func(t model.Transaction) bool { return t.AccountID == accountID }) {
				return restrictErr("accounts")
			}
			tx.db.dropAccount(accountID)
		}
	}
	for budgetID, b := range tx.db.budgets {
		if b.UserID == id {
			delete(tx.db.budgets, budgetID)
		}
	}
	for categoryID, c := range tx.db.categories {
		if c.UserID == id {
			delete(tx.db.categories, categoryID)
		}
	}
	delete(tx.db.users, id)
	return nil
}

func (tx fakeLedgerTx) SavingsGoalsForAccount(ctx context.Context, accountID uuid.UUID) ([]model.SavingsGoal, error) {
	return fakeGoals{tx.db}.ListSavingsGoals(ctx, accountID)
}

func (tx fakeLedgerTx) SaveSavingsGoal(_ context.Context, g *model.SavingsGoal) error {
	tx.db.savingsGoals[g.ID] = *g
	return nil
}

func (tx fakeLedgerTx) BudgetGoalsForBudget(ctx context.Context, budgetID uuid.UUID) ([]model.BudgetGoal, error) {
	return fakeGoals{tx.db}.ListBudgetGoals(ctx, budgetID)
}

func (tx fakeLedgerTx) SaveBudgetGoal(_ context.Context, g *model.BudgetGoal) error {
	tx.db.budgetGoals[g.ID] = *g
	return nil
}

// tokens

type fakeTokens struct{ db *memDB }

func (r fakeTokens) Revoke(_ context.Context, id string, ttl time.Duration) error {
	r.db.revoked[id] = ttl
	return nil
}

func (r fakeTokens) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := r.db.revoked[id]
	return ok, nil
}

// jobs

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (q *fakeQueue) ofType(typ string) []*asynq.Task {
	var out []*asynq.Task
	for _, t := range q.tasks {
		if t.Type() == typ {
			out = append(out, t)
		}
	}
	return out
}

func (q *fakeQueue) goalAlerts(t *testing.T) []job.GoalAlertPayload {
	t.Helper()
	var out []job.GoalAlertPayload
	for _, task := range q.ofType(job.TaskGoalAlert) {
		var p job.GoalAlertPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			t.Fatalf("decode goal alert: %v", err)
		}
		out = append(out, p)
	}
	return out
}

// env wires every service over one memDB.
type env struct {
	db    *memDB
	queue *fakeQueue
	now   time.Time
	svc   *Services
}

var testLocation = mustLocation("America/New_York")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := newMemDB()
	queue := &fakeQueue{}
	logger := zerolog.Nop()
	e := &env{db: db, queue: queue, now: time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)}
	clock := Clock{Now: func() time.Time { return e.now }, Location: testLocation}

	users := fakeUsers{db}
	families := fakeFamilies{db}
	accounts := fakeAccounts{db}
	budgets := fakeBudgets{db}
	goals := fakeGoals{db}

	alerts := newAlertDispatcher(users, queue, &logger)
	ledger := newLedger(fakeLedger{db}, alerts, &logger)

	e.svc = &Services{
		Auth:         NewAuthService(users, fakeTokens{db}, testTokens(), queue, &logger),
		Users:        NewUserService(users, ledger),
		Families:     NewFamilyService(families),
		Invitations:  NewInvitationService(fakeInvitations{db}, families, users, queue, clock, &logger),
		Categories:   NewCategoryService(fakeCategories{db}),
		Budgets:      NewBudgetService(budgets, ledger),
		Accounts:     NewAccountService(accounts, families, ledger, clock),
		Goals:        NewGoalService(goals, budgets, accounts, ledger, clock, &logger),
		Transactions: NewTransactionService(fakeTxns{db}, accounts, budgets, fakeCategories{db}, ledger),
		Recurring:    NewRecurringService(fakeTxns{db}, ledger, &logger),
		Reports:      NewReportService(fakeReports{db}, accounts, budgets, goals, users, clock),
	}
	return e
}

// fixtures

func (e *env) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
	}
	if err := (fakeUsers{e.db}).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *env) account(t *testing.T, userID uuid.UUID, balance string) *model.Account {
	t.Helper()
	a, err := e.svc.Accounts.Create(context.Background(), userID, &model.CreateAccountPayload{
		Name:    "Checking",
		Balance: dec(balance),
		Date:    datePtr("2024-01-01"),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func (e *env) budget(t *testing.T, userID uuid.UUID, total string) *model.Budget {
	t.Helper()
	b, err := e.svc.Budgets.Create(context.Background(), userID, &model.CreateBudgetPayload{
		Name:        "Groceries",
		TotalAmount: dec(total),
	})
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	return b
}

func (e *env) category(t *testing.T, userID uuid.UUID, name string) *model.Category {
	t.Helper()
	c, err := e.svc.Categories.Create(context.Background(), userID, &model.CategoryPayload{Name: name})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

// books is a user with one account, budget and category.
type books struct {
	user     *model.User
	account  *model.Account
	budget   *model.Budget
	category *model.Category
}

func (e *env) books(t *testing.T, username, balance, total string) books {
	t.Helper()
	u := e.user(t, username)
	return books{
		user:     u,
		account:  e.account(t, u.ID, balance),
		budget:   e.budget(t, u.ID, total),
		category: e.category(t, u.ID, "Food"),
	}
}

func (b books) payload(typ model.TransactionType, amount, date string) *model.TransactionPayload {
	return &model.TransactionPayload{
		AccountID:       b.account.ID,
		BudgetID:        b.budget.ID,
		CategoryID:      b.category.ID,
		Date:            mustDate(date),
		Amount:          dec(amount),
		TransactionType: typ,
		Description:     "test",
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *model.Date {
	d := mustDate(s)
	return &d
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	httpErr, ok := err.(*errs.HTTPError)
	if !ok {
		t.Fatalf("expected *errs.HTTPError with status %d, got %T (%v)", status, err, err)
	}
	if httpErr.Status != status {
		t.Fatalf("status = %d, want %d (%s)", httpErr.Status, status, httpErr.Message)
	}
}
