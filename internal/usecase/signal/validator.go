package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	signaldto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/signal"
	"github.com/google/uuid"
)

const defaultSource = "webhook"

type SignalValidator interface {
	// Validate always returns a signal fit for persisting. The error is nil,
	// ErrExpired or ErrInvalidFormat.
	Validate(input *signaldto.ProcessSignalInput, now time.Time) (*domain.Signal, error)
}

type DefaultSignalValidator struct {
	FreshnessWindow time.Duration
	FutureSkew      time.Duration
}

func NewDefaultSignalValidator(cfg config.Signals) *DefaultSignalValidator {
	return &DefaultSignalValidator{
		FreshnessWindow: cfg.FreshnessWindow,
		FutureSkew:      cfg.FutureSkew,
	}
}

func (v *DefaultSignalValidator) Validate(input *signaldto.ProcessSignalInput, now time.Time) (*domain.Signal, error) {
	signal := &domain.Signal{
		ID:         uuid.New().String(),
		RawPayload: rawPayload(input),
		Keyword:    NormalizeKeyword(input.SignalKeyword),
		Direction:  domain.DirectionUndefined,
		Strength:   domain.StrengthNormal,
		Symbol:     NormalizeSymbol(input.Symbol),
		Price:      input.Price,
		Timestamp:  input.Timestamp,
		ReceivedAt: now,
		Source:     strings.TrimSpace(input.Source),
		Status:     domain.SignalReceived,
	}
	if signal.Source == "" {
		signal.Source = defaultSource
	}

	kw, kwErr := ParseKeyword(input.SignalKeyword)
	if kwErr == nil {
		signal.Keyword = kw.Normalized
		signal.Category = kw.Category
		signal.Direction = kw.Direction
		signal.Strength = kw.Strength
	}

	if signal.Timestamp.IsZero() {
		return signal, fmt.Errorf("%w: timestamp is required", domain.ErrInvalidFormat)
	}
	if age := now.Sub(signal.Timestamp); age > v.FreshnessWindow {
		return signal, fmt.Errorf("%w: age %s exceeds %s", domain.ErrExpired, age.Round(time.Second), v.FreshnessWindow)
	}
	if ahead := signal.Timestamp.Sub(now); ahead > v.FutureSkew {
		return signal, fmt.Errorf("%w: timestamp is %s in the future", domain.ErrInvalidFormat, ahead.Round(time.Second))
	}

	var errs []error
	if kwErr != nil {
		errs = append(errs, kwErr)
	}
	if signal.Symbol == "" {
		errs = append(errs, fmt.Errorf("%w: symbol is required", domain.ErrInvalidFormat))
	} else if !validSymbol(signal.Symbol) {
		errs = append(errs, fmt.Errorf("%w: symbol %q is malformed", domain.ErrInvalidFormat, signal.Symbol))
	}
	if signal.Price != nil && !signal.Price.IsPositive() {
		errs = append(errs, fmt.Errorf("%w: price must be positive", domain.ErrInvalidFormat))
	}
	return signal, errors.Join(errs...)
}

// NormalizeSymbol upper-cases a trading pair and drops separators, so "btc/usdt"
// becomes "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(symbol)
}

func validSymbol(symbol string) bool {
	if len(symbol) < 2 || len(symbol) > 20 {
		return false
	}
	for _, r := range symbol {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func rawPayload(input *signaldto.ProcessSignalInput) string {
	if input.RawPayload != "" {
		return input.RawPayload
	}
	payload := map[string]any{
		"signalKeyword": input.SignalKeyword,
		"symbol":        input.Symbol,
		"timestamp":     input.Timestamp,
	}
	if input.Price != nil {
		payload["price"] = input.Price
	}
	if input.Source != "" {
		payload["source"] = input.Source
	}
	b, _ := json.Marshal(payload)
	return string(b)
}
