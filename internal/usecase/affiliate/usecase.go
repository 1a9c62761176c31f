package affiliate

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	affiliatedto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/affiliate"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AffiliateUsecase interface {
	RequestLink(ctx context.Context, input *affiliatedto.RequestLinkInput) (*domain.AffiliateLink, error)
	ApproveLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error)
	RejectLink(ctx context.Context, linkID, reason string) (*domain.AffiliateLink, error)
	SetCommissionEligible(ctx context.Context, input *affiliatedto.SetEligibilityInput) (*domain.AffiliateLink, error)
	GetLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error)
	GetAffiliateLinks(ctx context.Context, affiliateID string) ([]*domain.AffiliateLink, error)
	GetAffiliate(ctx context.Context, affiliateID string) (*domain.Affiliate, error)
	SetAffiliateRate(ctx context.Context, input *affiliatedto.SetRateInput) error
	ConfirmCommission(ctx context.Context, commissionID string) error
	ReserveForCompensation(ctx context.Context, affiliateID string) (*affiliatedto.ReservationOutput, error)
}

type DefaultAffiliateUsecase struct {
	Store   domain.TradingStore
	Repo    domain.AffiliateRepository
	Users   domain.UserDirectory
	Audit   domain.AuditRepository
	Metrics *metrics.SignalMetrics
	Log     *zap.Logger
	Cfg     config.Affiliate
	Now     func() time.Time

	newID func() string
}

func NewDefaultAffiliateUsecase(
	store domain.TradingStore,
	repo domain.AffiliateRepository,
	users domain.UserDirectory,
	audit domain.AuditRepository,
	m *metrics.SignalMetrics,
	log *zap.Logger,
	cfg config.Affiliate,
) (*DefaultAffiliateUsecase, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultAffiliateUsecase{
		Store:   store,
		Repo:    repo,
		Users:   users,
		Audit:   audit,
		Metrics: m,
		Log:     log,
		Cfg:     cfg,
		Now:     time.Now,
		newID:   idGenerator,
	}, nil
}

// withinLinkingWindow reports whether the user is still young enough to be linked.
func (uc *DefaultAffiliateUsecase) withinLinkingWindow(user *domain.User, now time.Time) bool {
	return now.Sub(user.CreatedAt) <= uc.Cfg.LinkingWindow
}

func (uc *DefaultAffiliateUsecase) RequestLink(ctx context.Context, input *affiliatedto.RequestLinkInput) (*domain.AffiliateLink, error) {
	if input.AffiliateID == "" || input.UserID == "" {
		return nil, fmt.Errorf("affiliate id and user id are required")
	}
	if input.AffiliateID == input.UserID {
		return nil, domain.ErrSelfLink
	}

	user, err := uc.Users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", input.UserID, err)
	}
	now := uc.Now()
	if !uc.withinLinkingWindow(user, now) {
		uc.audit(ctx, input.UserID, "request_rejected", fmt.Sprintf("affiliate=%s user created %s ago", input.AffiliateID, now.Sub(user.CreatedAt).Round(time.Minute)))
		return nil, domain.ErrLinkingWindowExpired
	}

	link := &domain.AffiliateLink{
		ID:          uc.newID(),
		AffiliateID: input.AffiliateID,
		UserID:      input.UserID,
		Status:      domain.LinkPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(uc.Cfg.ApprovalWindow),
		UpdatedAt:   now,
	}

	err = uc.inTx(ctx, input.UserID, func(tx domain.TradingTx) error {
		existing, err := tx.GetLinksByUserID(ctx, input.UserID, domain.LinkPending, domain.LinkActive)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domain.ErrLinkAlreadyExists
		}
		if err := tx.EnsureAffiliate(ctx, input.AffiliateID); err != nil {
			return err
		}
		return tx.CreateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	uc.transitioned(ctx, link, "link requested")
	return link, nil
}

// ApproveLink activates a pending link. A link that can no longer be approved is
// moved to rejected or expired and returned together with the reason error.
func (uc *DefaultAffiliateUsecase) ApproveLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	current, err := uc.Repo.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	user, err := uc.Users.GetUser(ctx, current.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", current.UserID, err)
	}

	var link *domain.AffiliateLink
	var outcome error
	err = uc.inTx(ctx, current.UserID, func(tx domain.TradingTx) error {
		link, err = tx.GetLinkForUpdate(ctx, linkID)
		if err != nil {
			return err
		}
		if link.Status != domain.LinkPending {
			return domain.ErrLinkNotPending
		}

		now := uc.Now()
		link.UpdatedAt = now
		switch {
		case now.After(link.ExpiresAt):
			link.Status = domain.LinkExpired
			link.Reason = "approval window elapsed"
			outcome = domain.ErrLinkRequestExpired
		case !uc.withinLinkingWindow(user, now):
			link.Status = domain.LinkRejected
			link.Reason = domain.ErrLinkingWindowExpired.Error()
			outcome = domain.ErrLinkingWindowExpired
		default:
			active, err := tx.GetLinksByUserID(ctx, link.UserID, domain.LinkActive)
			if err != nil {
				return err
			}
			if len(active) > 0 {
				link.Status = domain.LinkRejected
				link.Reason = "user already has an active affiliate link"
				outcome = domain.ErrLinkAlreadyExists
			} else {
				link.Status = domain.LinkActive
				link.LinkedAt = &now
				link.CommissionEligible = true
				link.Reason = ""
			}
		}
		return tx.UpdateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	uc.transitioned(ctx, link, link.Reason)
	return link, outcome
}

func (uc *DefaultAffiliateUsecase) RejectLink(ctx context.Context, linkID, reason string) (*domain.AffiliateLink, error) {
	current, err := uc.Repo.GetLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "rejected by administrator"
	}

	var link *domain.AffiliateLink
	err = uc.inTx(ctx, current.UserID, func(tx domain.TradingTx) error {
		link, err = tx.GetLinkForUpdate(ctx, linkID)
		if err != nil {
			return err
		}
		if link.Status != domain.LinkPending {
			return domain.ErrLinkNotPending
		}
		link.Status = domain.LinkRejected
		link.Reason = reason
		link.UpdatedAt = uc.Now()
		return tx.UpdateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	uc.transitioned(ctx, link, reason)
	return link, nil
}

func (uc *DefaultAffiliateUsecase) SetCommissionEligible(ctx context.Context, input *affiliatedto.SetEligibilityInput) (*domain.AffiliateLink, error) {
	current, err := uc.Repo.GetLinkByID(ctx, input.LinkID)
	if err != nil {
		return nil, err
	}

	var link *domain.AffiliateLink
	err = uc.inTx(ctx, current.UserID, func(tx domain.TradingTx) error {
		link, err = tx.GetLinkForUpdate(ctx, input.LinkID)
		if err != nil {
			return err
		}
		if link.Status != domain.LinkActive {
			return domain.ErrLinkNotActive
		}
		link.CommissionEligible = input.Eligible
		link.UpdatedAt = uc.Now()
		return tx.UpdateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, link.UserID, "eligibility_changed", fmt.Sprintf("link=%s eligible=%t", link.ID, link.CommissionEligible))
	return link, nil
}

func (uc *DefaultAffiliateUsecase) GetLink(ctx context.Context, linkID string) (*domain.AffiliateLink, error) {
	return uc.Repo.GetLinkByID(ctx, linkID)
}

func (uc *DefaultAffiliateUsecase) GetAffiliateLinks(ctx context.Context, affiliateID string) ([]*domain.AffiliateLink, error) {
	return uc.Repo.GetLinksByAffiliateID(ctx, affiliateID)
}

func (uc *DefaultAffiliateUsecase) GetAffiliate(ctx context.Context, affiliateID string) (*domain.Affiliate, error) {
	return uc.Repo.GetAffiliateByID(ctx, affiliateID)
}

func (uc *DefaultAffiliateUsecase) SetAffiliateRate(ctx context.Context, input *affiliatedto.SetRateInput) error {
	if input.Rate != nil && (input.Rate.IsNegative() || input.Rate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return domain.ErrInvalidRate
	}
	return uc.Repo.SetAffiliateRate(ctx, input.AffiliateID, input.Rate)
}

func (uc *DefaultAffiliateUsecase) ConfirmCommission(ctx context.Context, commissionID string) error {
	if err := uc.Repo.ConfirmCommission(ctx, commissionID, uc.Now()); err != nil {
		return err
	}
	uc.Log.Info("commission confirmed", zap.String("commission_id", commissionID))
	return nil
}

// ReserveForCompensation moves every confirmed commission of the affiliate to
// compensated. The payout itself happens outside this service.
func (uc *DefaultAffiliateUsecase) ReserveForCompensation(ctx context.Context, affiliateID string) (*affiliatedto.ReservationOutput, error) {
	amount, count, err := uc.Repo.ReserveForCompensation(ctx, affiliateID, uc.Now())
	if err != nil {
		return nil, err
	}
	uc.Log.Info("commissions reserved for compensation",
		zap.String("affiliate_id", affiliateID),
		zap.String("amount", amount.String()),
		zap.Int64("count", count),
	)
	return &affiliatedto.ReservationOutput{AffiliateID: affiliateID, Amount: amount, Count: count}, nil
}

func (uc *DefaultAffiliateUsecase) inTx(ctx context.Context, userID string, fn func(tx domain.TradingTx) error) error {
	tx, err := uc.Store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				uc.Log.Error("failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	if err := tx.LockUser(ctx, userID); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (uc *DefaultAffiliateUsecase) transitioned(ctx context.Context, link *domain.AffiliateLink, reason string) {
	uc.Log.Info("affiliate link transition",
		zap.String("link_id", link.ID),
		zap.String("affiliate_id", link.AffiliateID),
		zap.String("user_id", link.UserID),
		zap.String("status", string(link.Status)),
		zap.String("reason", reason),
	)
	if uc.Metrics != nil {
		uc.Metrics.RecordLinkTransition(string(link.Status))
	}
	uc.audit(ctx, link.UserID, string(link.Status), fmt.Sprintf("link=%s affiliate=%s %s", link.ID, link.AffiliateID, reason))
}

func (uc *DefaultAffiliateUsecase) audit(ctx context.Context, subject, outcome, message string) {
	if uc.Audit == nil {
		return
	}
	if err := uc.Audit.CreateAuditLog(ctx, &domain.AuditLog{
		ID:        uuid.New().String(),
		Category:  domain.AuditAffiliate,
		Subject:   subject,
		Outcome:   outcome,
		Message:   message,
		CreatedAt: uc.Now(),
	}); err != nil {
		uc.Log.Warn("failed to write affiliate audit log", zap.Error(err))
	}
}
