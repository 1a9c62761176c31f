package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	signalRequest "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/request"
	signalResponse "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/response"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	signaldto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/signal"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/signal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SignalHandler struct {
	Usecase signal.SignalUsecase
	Gate    usecase.SentimentGate
	Log     *zap.Logger
}

func NewSignalHandler(uc signal.SignalUsecase, gate usecase.SentimentGate, log *zap.Logger) *SignalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignalHandler{Usecase: uc, Gate: gate, Log: log}
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.POST("/signals", h.receiveSignal)
	group.GET("/sentiment", h.currentSentiment)
}

func (h *SignalHandler) receiveSignal(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, signalResponse.ErrorResponse{Success: false, Error: "failed to read body"})
		return
	}
	var req signalRequest.SignalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, signalResponse.ErrorResponse{Success: false, Error: "malformed JSON body"})
		return
	}

	input := ToProcessSignalInput(&req, string(raw))
	output, err := h.Usecase.ProcessSignal(c.Request.Context(), input)
	if err != nil {
		h.Log.Error("signal processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, signalResponse.SignalResponse{
			Success: false,
			Status:  string(signaldto.StatusError),
			Detail:  "internal error",
		})
		return
	}

	c.JSON(signalStatusCode(output.Status), signalResponse.SignalResponse{
		Success:  output.Success,
		Status:   string(output.Status),
		Detail:   output.Detail,
		SignalID: output.SignalID,
		Summary:  toSummary(output.Summary),
	})
}

// zonelessLayouts are ISO-8601 forms without an offset; they are read as UTC.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ToProcessSignalInput maps a webhook or Kafka payload to the usecase input. An
// unparsable timestamp is passed on as zero so the signal is stored and rejected.
func ToProcessSignalInput(req *signalRequest.SignalRequest, raw string) *signaldto.ProcessSignalInput {
	input := &signaldto.ProcessSignalInput{
		SignalKeyword: req.SignalKeyword,
		Symbol:        req.Symbol,
		Price:         req.Price,
		Source:        req.Source,
		RawPayload:    raw,
	}
	if ts := strings.TrimSpace(req.Timestamp); ts != "" {
		input.Timestamp = parseTimestamp(ts)
	}
	return input
}

func parseTimestamp(ts string) time.Time {
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return parsed.UTC()
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func signalStatusCode(status signaldto.Status) int {
	switch status {
	case signaldto.StatusProcessed:
		return http.StatusOK
	case signaldto.StatusRejected, signaldto.StatusExpired:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h *SignalHandler) currentSentiment(c *gin.Context) {
	reading := h.Gate.Current(c.Request.Context())
	directions := make([]string, 0, len(reading.AllowedDirections))
	for _, d := range reading.AllowedDirections {
		directions = append(directions, string(d))
	}
	c.JSON(http.StatusOK, signalResponse.SentimentResponse{
		Value:             reading.Value,
		Classification:    reading.Classification,
		AllowedDirections: directions,
		CapturedAt:        formatTime(reading.CapturedAt),
		Source:            reading.Source,
		Note:              reading.Note,
	})
}
