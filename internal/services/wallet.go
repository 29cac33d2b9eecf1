package services

import (
	"context"
	"errors"
	"time"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/metrics"
	"github.com/dailyyield/apiserver/internal/store"
	"github.com/dailyyield/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Accrual triggers recorded on summaries, logs and metrics.
const (
	TriggerSchedule = "schedule"
	TriggerAdmin    = "admin"
	TriggerCLI      = "cli"
)

// WalletAccruer applies one accrual pass.
type WalletAccruer interface {
	Accrue(ctx context.Context) ([]types.AccrualCredit, error)
}

// WalletWriter overwrites a wallet balance.
type WalletWriter interface {
	SetWallet(ctx context.Context, id int, wallet decimal.Decimal) (types.User, error)
}

// WalletService runs accrual passes and administrative balance overrides.
type WalletService struct {
	accruer   WalletAccruer
	writer    WalletWriter
	publisher EventPublisher
	logger    logrus.FieldLogger
}

func NewWalletService(accruer WalletAccruer, writer WalletWriter, publisher EventPublisher, logger logrus.FieldLogger) *WalletService {
	return &WalletService{
		accruer:   accruer,
		writer:    writer,
		publisher: publisherOrNop(publisher),
		logger:    logger,
	}
}

// RunAccrual credits every user holding active purchases with the sum of their
// packages' earnings_per_day. Calling it twice credits twice.
func (s *WalletService) RunAccrual(ctx context.Context, trigger string) (types.AccrualSummary, error) {
	summary := types.AccrualSummary{
		Trigger:       trigger,
		TotalCredited: decimal.Zero,
		StartedAt:     time.Now().UTC(),
	}

	credits, err := s.accruer.Accrue(ctx)
	summary.FinishedAt = time.Now().UTC()
	duration := summary.FinishedAt.Sub(summary.StartedAt)
	if err != nil {
		metrics.RecordAccrual(trigger, duration, 0, decimal.Zero, false)
		return types.AccrualSummary{}, apperr.Internal("Failed to update wallets", err)
	}

	for _, credit := range credits {
		summary.TotalCredited = summary.TotalCredited.Add(credit.Amount)
	}
	summary.UsersCredited = len(credits)
	metrics.RecordAccrual(trigger, duration, summary.UsersCredited, summary.TotalCredited, true)

	s.logger.WithFields(logrus.Fields{
		"trigger":        trigger,
		"users_credited": summary.UsersCredited,
		"total_credited": summary.TotalCredited.String(),
		"duration":       duration.String(),
	}).Info("accrual pass completed")
	s.publisher.Publish(ctx, EventAccrualCompleted, summary)

	return summary, nil
}

// SetWallet sets a user's balance to an absolute value.
func (s *WalletService) SetWallet(ctx context.Context, userID int, wallet *decimal.Decimal) (types.User, error) {
	if wallet == nil {
		return types.User{}, apperr.Validation("wallet is required")
	}
	if wallet.IsNegative() {
		return types.User{}, apperr.Validation("wallet must not be negative")
	}
	if err := checkMoney("wallet", *wallet); err != nil {
		return types.User{}, err
	}

	user, err := s.writer.SetWallet(ctx, userID, *wallet)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperr.NotFound("User not found")
		}
		return types.User{}, apperr.Internal("Failed to update wallet balance", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"wallet":  wallet.String(),
	}).Info("wallet overridden")
	s.publisher.Publish(ctx, EventWalletOverridden, types.WalletBalance{UserID: user.ID, Wallet: user.Wallet})

	return user, nil
}
