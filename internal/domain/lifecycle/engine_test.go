package lifecycle_test

import (
	"testing"

	"github.com/hyperfocal/ledgermind/internal/domain/lifecycle"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/stretchr/testify/require"
)

func newService(status ledger.ServiceStatus, revenue, costs float64) *ledger.ManagedService {
	return &ledger.ManagedService{
		ID:           "svc1",
		Name:         "qr-codes",
		Status:       status,
		DailyRevenue: revenue,
		DailyCosts:   costs,
		Scaling: ledger.ScalingConfig{
			AutoScale:     true,
			MaxDailySpend: 100,
			KillThreshold: -10,
		},
	}
}

func TestEvaluate_KillBelowThreshold(t *testing.T) {
	// $5 revenue, $20 costs: -$15/day is below the -$10 default.
	svc := newService(ledger.StatusActive, 5, 20)

	tr := lifecycle.Evaluate(svc, 50)
	require.NotNil(t, tr)
	require.Equal(t, ledger.StatusKilled, tr.To)
	require.Equal(t, lifecycle.DecisionKill, tr.Decision.Type)
	require.Equal(t, ledger.OutcomeAutoApproved, tr.Decision.Outcome)
	require.Equal(t, "low", tr.Decision.Risk)
	require.InDelta(t, 0.9, tr.Decision.Confidence, 1e-9)
	require.InDelta(t, -15.0, tr.Decision.RevenueImpact, 1e-9)
}

func TestEvaluate_ScaleAboveThreshold(t *testing.T) {
	// $80 revenue, $10 costs: $70/day clears the $50 threshold.
	svc := newService(ledger.StatusActive, 80, 10)

	tr := lifecycle.Evaluate(svc, 50)
	require.NotNil(t, tr)
	require.Equal(t, ledger.StatusScaling, tr.To)
	require.Equal(t, lifecycle.DecisionScale, tr.Decision.Type)
	require.Equal(t, ledger.OutcomeAutoApproved, tr.Decision.Outcome)
	require.Equal(t, "medium", tr.Decision.Risk)
	require.InDelta(t, 0.7, tr.Decision.Confidence, 1e-9)
	require.InDelta(t, 140.0, tr.Decision.RevenueImpact, 1e-9)
}

func TestEvaluate_NoRuleMatches(t *testing.T) {
	tests := []struct {
		name string
		svc  *ledger.ManagedService
	}{
		{"profit between thresholds", newService(ledger.StatusActive, 30, 10)},
		{"scaling service does not re-trigger scale rule", newService(ledger.StatusScaling, 80, 10)},
		{"paused service does not scale", newService(ledger.StatusPaused, 80, 10)},
		{"killed is terminal", newService(ledger.StatusKilled, 0, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, lifecycle.Evaluate(tt.svc, 50))
		})
	}
}

func TestEvaluate_AutoScaleDisabled(t *testing.T) {
	svc := newService(ledger.StatusActive, 0, 100)
	svc.Scaling.AutoScale = false
	require.Nil(t, lifecycle.Evaluate(svc, 50))
}

func TestEvaluate_KillRuleAppliesToScalingService(t *testing.T) {
	svc := newService(ledger.StatusScaling, 0, 50)
	tr := lifecycle.Evaluate(svc, 50)
	require.NotNil(t, tr)
	require.Equal(t, ledger.StatusScaling, tr.From)
	require.Equal(t, ledger.StatusKilled, tr.To)
}

func TestEvaluate_CustomKillThreshold(t *testing.T) {
	svc := newService(ledger.StatusActive, 10, 40)
	svc.Scaling.KillThreshold = -50

	// -$30/day is above a -$50 threshold: keep running.
	require.Nil(t, lifecycle.Evaluate(svc, 50))

	svc.DailyCosts = 70
	tr := lifecycle.Evaluate(svc, 50)
	require.NotNil(t, tr)
	require.Equal(t, ledger.StatusKilled, tr.To)
}
