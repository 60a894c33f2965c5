package analytics

import (
	"context"

	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/store"
)

// Service exposes the pure rollups over the live store.
type Service struct {
	store *store.Store
}

// NewService creates an analytics service reading from the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// RevenueReport computes the revenue report over the current state.
func (s *Service) RevenueReport(_ context.Context, timeframeDays int, serviceID string) RevenueReport {
	var report RevenueReport
	s.store.View(func(st *ledger.State) {
		report = Revenue(st, timeframeDays, serviceID)
	})
	return report
}

// PortfolioSummary computes the portfolio rollup over the current state.
func (s *Service) PortfolioSummary(_ context.Context) PortfolioSummary {
	var summary PortfolioSummary
	s.store.View(func(st *ledger.State) {
		summary = Portfolio(st)
	})
	return summary
}
