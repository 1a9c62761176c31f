package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SignalCategory string

const (
	CategoryOpen    SignalCategory = "open"
	CategoryClose   SignalCategory = "close"
	CategoryConfirm SignalCategory = "confirm"
)

type Direction string

const (
	DirectionLong      Direction = "LONG"
	DirectionShort     Direction = "SHORT"
	DirectionUndefined Direction = "UNDEFINED"
)

type SignalStrength string

const (
	StrengthNormal SignalStrength = "normal"
	StrengthStrong SignalStrength = "strong"
)

type SignalStatus string

const (
	SignalReceived  SignalStatus = "received"
	SignalProcessed SignalStatus = "processed"
	SignalExpired   SignalStatus = "expired"
)

type Signal struct {
	ID               string
	RawPayload       string
	Keyword          string
	Category         SignalCategory
	Direction        Direction
	Strength         SignalStrength
	Symbol           string
	Price            *decimal.Decimal
	Timestamp        time.Time
	ReceivedAt       time.Time
	Source           string
	Status           SignalStatus
	ProcessingResult string
}

type SignalRepository interface {
	CreateSignal(ctx context.Context, signal *Signal) error
	GetSignalByID(ctx context.Context, signalID string) (*Signal, error)
	// FinalizeSignal moves a received signal to a terminal status. It reports false
	// when the signal was no longer in the received state.
	FinalizeSignal(ctx context.Context, signalID string, status SignalStatus, result string) (bool, error)
	ExpireStaleSignals(ctx context.Context, receivedBefore time.Time, result string) (int64, error)
}
