package signal

import (
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

// Keyword is the decoded form of a signal keyword such as "SIGNAL LONG STRONG".
type Keyword struct {
	Normalized string
	Category   domain.SignalCategory
	Direction  domain.Direction
	Strength   domain.SignalStrength
}

var categoryPrefixes = map[string]domain.SignalCategory{
	"SIGNAL":      domain.CategoryOpen,
	"CLOSE":       domain.CategoryClose,
	"FECHE":       domain.CategoryClose,
	"CONFIRM":     domain.CategoryConfirm,
	"CONFIRMACAO": domain.CategoryConfirm,
	"CONFIRMAÇÃO": domain.CategoryConfirm,
}

var strengthMarkers = map[string]struct{}{
	"STRONG": {},
	"FORTE":  {},
}

// NormalizeKeyword upper-cases raw and collapses whitespace.
func NormalizeKeyword(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
}

// ParseKeyword accepts "[SIGNAL] LONG|SHORT [STRONG|FORTE]", "CLOSE|FECHE LONG|SHORT"
// and "CONFIRM|CONFIRMACAO [LONG|SHORT]". Anything else is ErrInvalidFormat.
func ParseKeyword(raw string) (*Keyword, error) {
	normalized := NormalizeKeyword(raw)
	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty keyword", domain.ErrInvalidFormat)
	}

	kw := &Keyword{
		Normalized: normalized,
		Category:   domain.CategoryOpen,
		Direction:  domain.DirectionUndefined,
		Strength:   domain.StrengthNormal,
	}
	if category, ok := categoryPrefixes[tokens[0]]; ok {
		kw.Category = category
		tokens = tokens[1:]
	}

	if len(tokens) > 0 {
		switch tokens[0] {
		case string(domain.DirectionLong):
			kw.Direction = domain.DirectionLong
			tokens = tokens[1:]
		case string(domain.DirectionShort):
			kw.Direction = domain.DirectionShort
			tokens = tokens[1:]
		}
	}
	if kw.Direction == domain.DirectionUndefined && kw.Category != domain.CategoryConfirm {
		return nil, fmt.Errorf("%w: keyword %q has no direction", domain.ErrInvalidFormat, normalized)
	}

	if len(tokens) > 0 && kw.Category == domain.CategoryOpen {
		if _, ok := strengthMarkers[tokens[0]]; ok {
			kw.Strength = domain.StrengthStrong
			tokens = tokens[1:]
		}
	}
	if len(tokens) > 0 {
		return nil, fmt.Errorf("%w: unrecognized keyword %q", domain.ErrInvalidFormat, normalized)
	}
	return kw, nil
}
