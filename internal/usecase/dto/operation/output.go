package operationdto

import "github.com/LavaJover/shvark-signal-service/internal/domain"

type Outcome string

const (
	OutcomeOpened  Outcome = "opened"
	OutcomeClosed  Outcome = "closed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeError   Outcome = "error"
)

// UserDetail is the outcome of one atomic unit of a batch.
type UserDetail struct {
	UserID      string
	OperationID string
	Outcome     Outcome
	ReasonCode  string
	Message     string
}

type BatchSummary struct {
	SignalID         string
	UsersProcessed   int
	OperationsOpened int
	OperationsClosed int
	Skipped          int
	Errors           int
	Details          []UserDetail
}

// Add tallies a detail into the summary counters.
func (s *BatchSummary) Add(detail UserDetail) {
	s.Details = append(s.Details, detail)
	switch detail.Outcome {
	case OutcomeOpened:
		s.OperationsOpened++
	case OutcomeClosed:
		s.OperationsClosed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeError:
		s.Errors++
	}
}

type CloseOutput struct {
	Operation  *domain.Operation
	Commission *domain.Commission
}
