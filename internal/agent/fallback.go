package agent

import (
	"context"
	"log/slog"
)

// FallbackDecisionMaker wraps a primary decision-maker with a fallback
// provider. If the primary fails, it automatically retries with the
// fallback.
type FallbackDecisionMaker struct {
	primary  DecisionMaker
	fallback DecisionMaker
	logger   *slog.Logger
}

// NewFallbackDecisionMaker creates a fallback-enabled decision maker.
// If fallback is nil, only the primary provider is used.
func NewFallbackDecisionMaker(primary, fallback DecisionMaker, logger *slog.Logger) *FallbackDecisionMaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackDecisionMaker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Decide asks the primary decision-maker first and retries with the
// fallback when the primary fails.
func (d *FallbackDecisionMaker) Decide(ctx context.Context, system string, history []Message, tools []ToolSpec) (Decision, error) {
	decision, err := d.primary.Decide(ctx, system, history, tools)
	if err == nil {
		return decision, nil
	}

	d.logger.Warn("primary decision-maker failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", d.fallback != nil,
	)

	if d.fallback == nil {
		return Decision{}, err
	}

	fallbackDecision, fallbackErr := d.fallback.Decide(ctx, system, history, tools)
	if fallbackErr != nil {
		d.logger.Error("fallback decision-maker also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Decision{}, fallbackErr
	}

	d.logger.Info("fallback decision-maker succeeded after primary failure")
	return fallbackDecision, nil
}
