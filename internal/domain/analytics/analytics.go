// Package analytics computes read-side rollups over the entity graph. Every
// function here is pure: repeated calls over unchanged state return identical
// results, and nothing is ever mutated.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/hyperfocal/ledgermind/internal/ledger"
)

// ServiceRevenue is the per-service partition of a revenue report.
type ServiceRevenue struct {
	ServiceID          string  `json:"service_id"`
	ServiceName        string  `json:"service_name,omitempty"`
	TransactionCount   int     `json:"transaction_count"`
	TotalRevenue       float64 `json:"total_revenue"`
	AverageTransaction float64 `json:"average_transaction"`
	DailyAverage       float64 `json:"daily_average"`
}

// RevenueReport aggregates transactions over a lookback window.
type RevenueReport struct {
	TimeframeDays    int              `json:"timeframe_days"`
	TransactionCount int              `json:"transaction_count"`
	TotalRevenue     float64          `json:"total_revenue"`
	Services         []ServiceRevenue `json:"services"`
}

// Revenue partitions transactions from the last timeframeDays by service.
// serviceID, when non-empty, restricts the report to one service. Averages
// are defined as 0 when there is nothing to average.
func Revenue(st *ledger.State, timeframeDays int, serviceID string) RevenueReport {
	if timeframeDays <= 0 {
		timeframeDays = 30
	}
	cutoff := ledger.Now() - int64(timeframeDays)*int64(24*time.Hour/time.Millisecond)

	report := RevenueReport{TimeframeDays: timeframeDays}
	perService := make(map[string]*ServiceRevenue)

	for _, txn := range st.Transactions {
		if txn.CreatedAt < cutoff {
			continue
		}
		if serviceID != "" && txn.ServiceID != serviceID {
			continue
		}
		entry, ok := perService[txn.ServiceID]
		if !ok {
			entry = &ServiceRevenue{ServiceID: txn.ServiceID}
			if svc, ok := st.Services[txn.ServiceID]; ok {
				entry.ServiceName = svc.Name
			}
			perService[txn.ServiceID] = entry
		}
		entry.TransactionCount++
		entry.TotalRevenue += txn.Amount
		report.TransactionCount++
		report.TotalRevenue += txn.Amount
	}

	for _, entry := range perService {
		if entry.TransactionCount > 0 {
			entry.AverageTransaction = entry.TotalRevenue / float64(entry.TransactionCount)
		}
		entry.DailyAverage = entry.TotalRevenue / float64(timeframeDays)
		report.Services = append(report.Services, *entry)
	}

	sort.SliceStable(report.Services, func(i, j int) bool {
		a, b := report.Services[i], report.Services[j]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		return a.ServiceID < b.ServiceID
	})
	return report
}

// PortfolioSummary is the aggregate daily picture across operating services.
type PortfolioSummary struct {
	OperatingServices int      `json:"operating_services"`
	TotalDailyRevenue float64  `json:"total_daily_revenue"`
	TotalDailyCosts   float64  `json:"total_daily_costs"`
	DailyProfit       float64  `json:"daily_profit"`
	PendingDecisions  int      `json:"pending_decisions"`
	Health            string   `json:"health"`
	Recommendations   []string `json:"recommendations,omitempty"`
}

// Portfolio rolls up daily revenue and costs across active and scaling
// services and derives a health narrative plus structural recommendations.
func Portfolio(st *ledger.State) PortfolioSummary {
	var summary PortfolioSummary
	for _, svc := range st.Services {
		if svc.Status != ledger.StatusActive && svc.Status != ledger.StatusScaling {
			continue
		}
		summary.OperatingServices++
		summary.TotalDailyRevenue += svc.DailyRevenue
		summary.TotalDailyCosts += svc.DailyCosts
	}
	summary.DailyProfit = summary.TotalDailyRevenue - summary.TotalDailyCosts

	highRiskPending := 0
	for _, dec := range st.Decisions {
		if dec.Outcome == ledger.OutcomePending {
			summary.PendingDecisions++
			if dec.Risk == "high" {
				highRiskPending++
			}
		}
	}

	switch {
	case summary.DailyProfit < 0:
		summary.Health = fmt.Sprintf("urgent: portfolio is losing $%.2f per day", -summary.DailyProfit)
	case summary.DailyProfit < 10:
		summary.Health = fmt.Sprintf("caution: daily profit of $%.2f is barely above breakeven", summary.DailyProfit)
	case summary.DailyProfit > 100:
		summary.Health = fmt.Sprintf("strong: portfolio is earning $%.2f per day", summary.DailyProfit)
	default:
		summary.Health = fmt.Sprintf("steady: daily profit is $%.2f", summary.DailyProfit)
	}

	if summary.OperatingServices < 3 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("only %d operating services; diversify to reduce single-service risk", summary.OperatingServices))
	}
	if highRiskPending > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("%d high-risk decisions are pending review", highRiskPending))
	}
	if mean, ok := meanSatisfaction(st); ok {
		if mean < 3.5 {
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("mean customer satisfaction is %.1f; investigate churn risk", mean))
		} else if mean > 4.5 {
			summary.Recommendations = append(summary.Recommendations,
				fmt.Sprintf("mean customer satisfaction is %.1f; consider raising prices", mean))
		}
	}
	return summary
}

func meanSatisfaction(st *ledger.State) (float64, bool) {
	var sum float64
	var n int
	for _, cust := range st.Customers {
		if cust.Satisfaction > 0 {
			sum += cust.Satisfaction
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// RankOpportunities orders opportunities by descending profit potential,
// unknown potential last, ties broken by most recent discovery.
func RankOpportunities(opps []*ledger.MarketOpportunity) []*ledger.MarketOpportunity {
	ranked := make([]*ledger.MarketOpportunity, len(opps))
	copy(ranked, opps)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.ProfitPotential != nil && b.ProfitPotential == nil:
			return true
		case a.ProfitPotential == nil && b.ProfitPotential != nil:
			return false
		case a.ProfitPotential != nil && b.ProfitPotential != nil && *a.ProfitPotential != *b.ProfitPotential:
			return *a.ProfitPotential > *b.ProfitPotential
		}
		return a.DiscoveredAt > b.DiscoveredAt
	})
	return ranked
}
