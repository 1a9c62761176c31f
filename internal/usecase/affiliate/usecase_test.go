package affiliate

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	affiliatedto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/affiliate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var userCreated = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newAffiliateUsecase(t *testing.T) (*DefaultAffiliateUsecase, *memory.Store, *clock) {
	t.Helper()
	store := memory.NewStore()
	users := memory.NewUserDirectory()
	users.PutUser(domain.User{ID: "u1", CreatedAt: userCreated})
	users.PutUser(domain.User{ID: "u2", CreatedAt: userCreated})

	uc, err := NewDefaultAffiliateUsecase(store, store, users, store, nil, zap.NewNop(), config.Affiliate{
		DefaultRate:    0.015,
		LinkingWindow:  48 * time.Hour,
		ApprovalWindow: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	c := &clock{now: userCreated}
	uc.Now = c.Now
	return uc, store, c
}

func TestApproveWithinLinkingWindow(t *testing.T) {
	uc, _, c := newAffiliateUsecase(t)
	ctx := context.Background()

	c.now = userCreated.Add(47*time.Hour + 59*time.Minute)
	link, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.LinkPending, link.Status)
	assert.Equal(t, c.now.Add(7*24*time.Hour), link.ExpiresAt)

	approved, err := uc.ApproveLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkActive, approved.Status)
	assert.True(t, approved.CommissionEligible)
	require.NotNil(t, approved.LinkedAt)
}

func TestRequestAfterLinkingWindowRejected(t *testing.T) {
	uc, store, c := newAffiliateUsecase(t)
	ctx := context.Background()

	c.now = userCreated.Add(48*time.Hour + time.Minute)
	_, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrLinkingWindowExpired)

	links, err := store.GetLinksByAffiliateID(ctx, "aff-1")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestApproveAfterLinkingWindowAutoRejects(t *testing.T) {
	uc, store, c := newAffiliateUsecase(t)
	ctx := context.Background()

	c.now = userCreated.Add(47 * time.Hour)
	link, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	require.NoError(t, err)

	c.now = userCreated.Add(48*time.Hour + time.Minute)
	rejected, err := uc.ApproveLink(ctx, link.ID)
	assert.ErrorIs(t, err, domain.ErrLinkingWindowExpired)
	require.NotNil(t, rejected)
	assert.Equal(t, domain.LinkRejected, rejected.Status)
	assert.NotEmpty(t, rejected.Reason)

	stored, err := store.GetLinkByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkRejected, stored.Status)
	assert.False(t, stored.CommissionEligible)
}

func TestRequestRejectsExistingLink(t *testing.T) {
	uc, _, _ := newAffiliateUsecase(t)
	ctx := context.Background()

	_, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	require.NoError(t, err)

	_, err = uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-2", UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrLinkAlreadyExists)
}

func TestExpiredRequestIsNeverApproved(t *testing.T) {
	uc, _, c := newAffiliateUsecase(t)
	ctx := context.Background()

	link, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	require.NoError(t, err)

	c.now = link.ExpiresAt.Add(time.Second)
	expired, err := uc.ApproveLink(ctx, link.ID)
	assert.ErrorIs(t, err, domain.ErrLinkRequestExpired)
	assert.Equal(t, domain.LinkExpired, expired.Status)

	_, err = uc.ApproveLink(ctx, link.ID)
	assert.ErrorIs(t, err, domain.ErrLinkNotPending)
}

func TestRejectAndEligibilityToggle(t *testing.T) {
	uc, _, _ := newAffiliateUsecase(t)
	ctx := context.Background()

	pending, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u1"})
	require.NoError(t, err)
	_, err = uc.SetCommissionEligible(ctx, &affiliatedto.SetEligibilityInput{LinkID: pending.ID, Eligible: false})
	assert.ErrorIs(t, err, domain.ErrLinkNotActive)

	rejected, err := uc.RejectLink(ctx, pending.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LinkRejected, rejected.Status)

	other, err := uc.RequestLink(ctx, &affiliatedto.RequestLinkInput{AffiliateID: "aff-1", UserID: "u2"})
	require.NoError(t, err)
	_, err = uc.ApproveLink(ctx, other.ID)
	require.NoError(t, err)

	toggled, err := uc.SetCommissionEligible(ctx, &affiliatedto.SetEligibilityInput{LinkID: other.ID, Eligible: false})
	require.NoError(t, err)
	assert.False(t, toggled.CommissionEligible)
	assert.Equal(t, domain.LinkActive, toggled.Status)
}

func TestSetAffiliateRateValidates(t *testing.T) {
	uc, store, _ := newAffiliateUsecase(t)
	ctx := context.Background()

	bad := decimal.NewFromInt(2)
	assert.ErrorIs(t, uc.SetAffiliateRate(ctx, &affiliatedto.SetRateInput{AffiliateID: "aff-1", Rate: &bad}), domain.ErrInvalidRate)

	rate := decimal.RequireFromString("0.02")
	require.NoError(t, uc.SetAffiliateRate(ctx, &affiliatedto.SetRateInput{AffiliateID: "aff-1", Rate: &rate}))
	affiliate, err := store.GetAffiliateByID(ctx, "aff-1")
	require.NoError(t, err)
	require.NotNil(t, affiliate.CommissionRate)
	assert.True(t, affiliate.CommissionRate.Equal(rate))
}
