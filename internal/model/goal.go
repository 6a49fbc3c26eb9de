package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalState is the progress shared by budget and savings goals.
type GoalState struct {
	TargetBalance  decimal.Decimal `json:"target_balance" db:"target_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	GoalMet        bool            `json:"goal_met" db:"goal_met"`
	AlertSent      bool            `json:"alert_sent" db:"alert_sent"`
	DateSet        Date            `json:"date_set" db:"date_set"`
	StartDate      Date            `json:"start_date" db:"start_date"`
	EndDate        *Date           `json:"end_date" db:"end_date"`
}

// Track records the underlying balance and evaluates the goal. It returns
// true exactly once in the life of a goal: the first time it becomes met
// while no alert has been sent yet.
func (g *GoalState) Track(balance decimal.Decimal) bool {
	g.CurrentBalance = balance
	if g.GoalMet || balance.LessThan(g.TargetBalance) {
		return false
	}
	g.GoalMet = true
	if g.AlertSent {
		return false
	}
	g.AlertSent = true
	return true
}

// Retarget moves the target. A goal that is no longer reached is reopened,
// but AlertSent is kept so it never alerts twice.
func (g *GoalState) Retarget(target decimal.Decimal) bool {
	g.TargetBalance = target
	if g.CurrentBalance.LessThan(target) {
		g.GoalMet = false
		return false
	}
	return g.Track(g.CurrentBalance)
}

type GoalKind string

const (
	GoalKindBudget  GoalKind = "budget"
	GoalKindSavings GoalKind = "savings"
)

// GoalAlert is produced when a goal is met for the first time. It is
// delivered only after the surrounding database transaction commits.
type GoalAlert struct {
	Kind    GoalKind
	GoalID  uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Target  decimal.Decimal
	Balance decimal.Decimal
}
