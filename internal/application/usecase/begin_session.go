package usecase

import (
	"context"
	"log/slog"

	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/port"
)

// BeginSessionUseCase starts a new origination workflow: it creates the
// session and loads the financial policy once.
type BeginSessionUseCase struct {
	policy port.PolicyClient
	logger *slog.Logger
}

// NewBeginSessionUseCase wires dependencies.
func NewBeginSessionUseCase(policy port.PolicyClient, logger *slog.Logger) *BeginSessionUseCase {
	return &BeginSessionUseCase{policy: policy, logger: logger}
}

// Execute creates the session. A policy load failure is degraded, not fatal:
// the session proceeds on the fallback default rate and a non-blocking
// notice is surfaced.
func (uc *BeginSessionUseCase) Execute(ctx context.Context, hooks model.Hooks) *model.WizardSession {
	session := model.NewWizardSession(hooks)

	pol, err := uc.policy.GetFinancialPolicyConfig(ctx)
	if err != nil {
		uc.logger.Warn("financial policy load failed, continuing on fallback rate",
			"session_id", session.ID(),
			"error", err,
		)
		session.Notice("interest policy unavailable; using the default rate until it loads")
		return session
	}

	session.ApplyPolicy(pol)
	uc.logger.Info("origination session started",
		"session_id", session.ID(),
		"default_rate_pct", pol.DefaultMonthlyInterestRatePct.String(),
	)
	return session
}
