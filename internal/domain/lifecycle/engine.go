// Package lifecycle implements the rule-based state transitions for managed
// services. Rules are evaluated in order, first match wins, and only apply
// to services with auto-scaling enabled.
package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hyperfocal/ledgermind/internal/ledger"
)

const (
	// DecisionKill is the decision type logged for an automatic kill.
	DecisionKill = "auto_kill_service"
	// DecisionScale is the decision type logged for an automatic scale-up.
	DecisionScale = "auto_scale_service"

	// scalingMultiplier is a placeholder heuristic for the expected revenue
	// impact of scaling, not a measured projection.
	scalingMultiplier = 2.0
)

// Transition describes a status change the engine decided on, together with
// the audit decision that records it.
type Transition struct {
	From     ledger.ServiceStatus
	To       ledger.ServiceStatus
	Decision *ledger.Decision
}

// Evaluate applies the transition rules to a service's current daily
// counters. It returns nil when no rule matches. killed is terminal: a
// killed service is never re-evaluated, so resubmitting the same update
// cannot log a second kill decision.
func Evaluate(svc *ledger.ManagedService, scaleThreshold float64) *Transition {
	if !svc.Scaling.AutoScale || svc.Status == ledger.StatusKilled {
		return nil
	}

	profit := svc.DailyRevenue - svc.DailyCosts

	if profit < svc.Scaling.KillThreshold {
		return &Transition{
			From: svc.Status,
			To:   ledger.StatusKilled,
			Decision: &ledger.Decision{
				ID:   uuid.NewString(),
				Type: DecisionKill,
				Context: fmt.Sprintf("service %q daily profit $%.2f fell below kill threshold $%.2f",
					svc.Name, profit, svc.Scaling.KillThreshold),
				Outcome:       ledger.OutcomeAutoApproved,
				RevenueImpact: profit,
				Risk:          "low",
				Confidence:    0.9,
				CreatedAt:     ledger.Now(),
			},
		}
	}

	if profit > scaleThreshold && svc.Status == ledger.StatusActive {
		return &Transition{
			From: svc.Status,
			To:   ledger.StatusScaling,
			Decision: &ledger.Decision{
				ID:   uuid.NewString(),
				Type: DecisionScale,
				Context: fmt.Sprintf("service %q daily profit $%.2f cleared scale threshold $%.2f",
					svc.Name, profit, scaleThreshold),
				Outcome:       ledger.OutcomeAutoApproved,
				RevenueImpact: scalingMultiplier * profit,
				Risk:          "medium",
				Confidence:    0.7,
				CreatedAt:     ledger.Now(),
			},
		}
	}

	return nil
}
