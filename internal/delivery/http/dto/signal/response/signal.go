package response

type UserDetail struct {
	UserID      string `json:"userId"`
	OperationID string `json:"operationId,omitempty"`
	Outcome     string `json:"outcome"`
	ReasonCode  string `json:"reasonCode,omitempty"`
	Message     string `json:"message,omitempty"`
}

type BatchSummary struct {
	UsersProcessed   int          `json:"usersProcessed"`
	OperationsOpened int          `json:"operationsOpened"`
	OperationsClosed int          `json:"operationsClosed"`
	Skipped          int          `json:"skipped"`
	Errors           int          `json:"errors"`
	PerUserDetail    []UserDetail `json:"perUserDetail"`
}

type SignalResponse struct {
	Success  bool          `json:"success"`
	Status   string        `json:"status"`
	Detail   string        `json:"detail"`
	SignalID string        `json:"signalId,omitempty"`
	Summary  *BatchSummary `json:"summary,omitempty"`
}

type SentimentResponse struct {
	Value             int      `json:"value"`
	Classification    string   `json:"classification"`
	AllowedDirections []string `json:"allowedDirections"`
	CapturedAt        string   `json:"capturedAt"`
	Source            string   `json:"source"`
	Note              string   `json:"note,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
