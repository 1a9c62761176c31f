package signaldto

import operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"

type Status string

const (
	StatusProcessed Status = "processed"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusError     Status = "error"
)

type ProcessSignalOutput struct {
	Success  bool
	Status   Status
	Detail   string
	SignalID string
	Summary  *operationdto.BatchSummary
}
