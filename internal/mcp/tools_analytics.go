package mcp

import (
	"context"
	"strings"

	"github.com/hyperfocal/ledgermind/internal/domain/analytics"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerAnalyticsTools(server *sdkmcp.Server, svc AnalyticsService) {
	sdkmcp.AddTool(server, revenueAnalyticsTool(), revenueAnalyticsHandler(svc))
	sdkmcp.AddTool(server, portfolioSummaryTool(), portfolioSummaryHandler(svc))
}

type RevenueAnalyticsInput struct {
	TimeframeDays int    `json:"timeframe_days,omitempty" jsonschema:"lookback window in days (default 30)"`
	ServiceID     string `json:"service_id,omitempty" jsonschema:"restrict the report to one service"`
}

type RevenueAnalyticsResult struct {
	Report analytics.RevenueReport `json:"report"`
}

func revenueAnalyticsTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_revenue_analytics",
		Description: "Aggregate transactions over a lookback window, partitioned by service and ordered by revenue",
	}
}

func revenueAnalyticsHandler(svc AnalyticsService) sdkmcp.ToolHandlerFor[RevenueAnalyticsInput, RevenueAnalyticsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input RevenueAnalyticsInput) (*sdkmcp.CallToolResult, RevenueAnalyticsResult, error) {
		report := svc.RevenueReport(ctx, input.TimeframeDays, input.ServiceID)
		return textResult("%d transactions totaling $%.2f over the last %d days.",
				report.TransactionCount, report.TotalRevenue, report.TimeframeDays),
			RevenueAnalyticsResult{Report: report}, nil
	}
}

type PortfolioSummaryInput struct{}

type PortfolioSummaryResult struct {
	Summary analytics.PortfolioSummary `json:"summary"`
}

func portfolioSummaryTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_portfolio_summary",
		Description: "Roll up daily profit across operating services with a health narrative and recommendations",
	}
}

func portfolioSummaryHandler(svc AnalyticsService) sdkmcp.ToolHandlerFor[PortfolioSummaryInput, PortfolioSummaryResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ PortfolioSummaryInput) (*sdkmcp.CallToolResult, PortfolioSummaryResult, error) {
		summary := svc.PortfolioSummary(ctx)
		lines := []string{summary.Health}
		lines = append(lines, summary.Recommendations...)
		return textResult("%s", strings.Join(lines, " ")), PortfolioSummaryResult{Summary: summary}, nil
	}
}

// listOpportunitiesTool lives here rather than with the portfolio tools
// because ranking is an analytics concern.
type ListOpportunitiesInput struct{}

type ListOpportunitiesResult struct {
	Opportunities []ledger.MarketOpportunity `json:"opportunities"`
}

func listOpportunitiesTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_opportunities",
		Description: "List market opportunities ranked by profit potential (unknown last), then by discovery time",
	}
}

func listOpportunitiesHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[ListOpportunitiesInput, ListOpportunitiesResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListOpportunitiesInput) (*sdkmcp.CallToolResult, ListOpportunitiesResult, error) {
		ranked := analytics.RankOpportunities(svc.ListOpportunities(ctx))
		result := ListOpportunitiesResult{Opportunities: make([]ledger.MarketOpportunity, 0, len(ranked))}
		for _, opp := range ranked {
			result.Opportunities = append(result.Opportunities, *opp)
		}
		return textResult("Found %d opportunities.", len(result.Opportunities)), result, nil
	}
}
