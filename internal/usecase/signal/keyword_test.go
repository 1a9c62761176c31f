package signal

import (
	"testing"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyword(t *testing.T) {
	cases := []struct {
		raw       string
		category  domain.SignalCategory
		direction domain.Direction
		strength  domain.SignalStrength
	}{
		{"SIGNAL LONG", domain.CategoryOpen, domain.DirectionLong, domain.StrengthNormal},
		{"signal short", domain.CategoryOpen, domain.DirectionShort, domain.StrengthNormal},
		{"SIGNAL LONG STRONG", domain.CategoryOpen, domain.DirectionLong, domain.StrengthStrong},
		{"  Signal   Short   Strong ", domain.CategoryOpen, domain.DirectionShort, domain.StrengthStrong},
		{"LONG", domain.CategoryOpen, domain.DirectionLong, domain.StrengthNormal},
		{"SHORT FORTE", domain.CategoryOpen, domain.DirectionShort, domain.StrengthStrong},
		{"CLOSE LONG", domain.CategoryClose, domain.DirectionLong, domain.StrengthNormal},
		{"FECHE SHORT", domain.CategoryClose, domain.DirectionShort, domain.StrengthNormal},
		{"CONFIRM LONG", domain.CategoryConfirm, domain.DirectionLong, domain.StrengthNormal},
		{"confirmação short", domain.CategoryConfirm, domain.DirectionShort, domain.StrengthNormal},
		{"CONFIRMACAO", domain.CategoryConfirm, domain.DirectionUndefined, domain.StrengthNormal},
	}
	for _, tc := range cases {
		kw, err := ParseKeyword(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.category, kw.Category, tc.raw)
		assert.Equal(t, tc.direction, kw.Direction, tc.raw)
		assert.Equal(t, tc.strength, kw.Strength, tc.raw)
	}
}

func TestParseKeywordRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "BUY", "SIGNAL", "CLOSE", "CLOSE LONG STRONG", "SIGNAL LONG SHORT", "LONG NOW", "SIGNAL UP"} {
		_, err := ParseKeyword(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidFormat, raw)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol(" btc/usdt "))
	assert.Equal(t, "ETHUSDT", NormalizeSymbol("eth-usdt"))
}
