package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/budgetbud/internal/model"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/rs/zerolog"
)

// maxOccurrences bounds how many missed periods one run catches up per parent.
const maxOccurrences = 366

type RecurringService struct {
	txns   repository.TransactionRepository
	ledger *ledger
	logger *zerolog.Logger
}

func NewRecurringService(txns repository.TransactionRepository, ledger *ledger, logger *zerolog.Logger) *RecurringService {
	return &RecurringService{txns: txns, ledger: ledger, logger: logger}
}

// Process creates the occurrences of every recurring transaction that fell
// due on or before the day of now, and advances their next occurrence. now
// is expected in the scheduler's timezone.
func (s *RecurringService) Process(ctx context.Context, now time.Time) (int, error) {
	log := loggerFrom(ctx, s.logger)
	today := model.DateOf(now)

	parents, err := s.txns.ListDueRecurring(ctx, today)
	if err != nil {
		return 0, err
	}

	var (
		created int
		failed  []error
	)
	for i := range parents {
		parent := &parents[i]
		n, err := s.ledger.recordOccurrences(ctx, parent, today, maxOccurrences)
		if err != nil {
			log.Error().Err(err).Str("transaction_id", parent.ID.String()).Msg("failed to create recurring occurrences")
			failed = append(failed, err)
			continue
		}
		created += n
	}

	log.Info().
		Int("parents", len(parents)).
		Int("created", created).
		Int("failed", len(failed)).
		Msg("recurring transactions processed")

	return created, errors.Join(failed...)
}
