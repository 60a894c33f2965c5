package mcp

import (
	"context"
	"log/slog"

	"github.com/hyperfocal/ledgermind/internal/domain/analytics"
	"github.com/hyperfocal/ledgermind/internal/domain/insight"
	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `ledgermind is a durable business-state ledger for a stateless caller.

Core concepts:
- ManagedService: one autonomous revenue-generating unit with daily counters
  and auto-scaling thresholds. killed is terminal.
- Transaction: an immutable monetary event; appending one recomputes the
  owning service's daily revenue.
- Decision: an audit entry for a choice; lifecycle transitions log decisions
  automatically with outcome auto_approved.
- BusinessSnapshot: an immutable point-in-time portfolio summary saved via
  save_business_state; the latest one is authoritative.

Default workflow:
1) Orient: get_business_state and get_portfolio_summary.
2) Report: record_transaction for money events, update_service_performance
   for daily counters (lifecycle rules run synchronously and are reported
   back in the result).
3) Remember: log_interaction for every exchange worth keeping; decision and
   blocker keywords automatically materialize structured records.
4) Hand off: save_business_state with a session note, then
   get_session_context at the start of the next session.

All mutations persist automatically in the background; nothing needs an
explicit save except the business snapshot itself.`

// PortfolioService defines portfolio operations needed by MCP.
type PortfolioService interface {
	RegisterService(ctx context.Context, req portfolio.RegisterRequest) (*ledger.ManagedService, error)
	UpdatePerformance(ctx context.Context, req portfolio.PerformanceUpdate) (*portfolio.UpdateResult, error)
	RecordTransaction(ctx context.Context, req portfolio.TransactionRequest) (*ledger.Transaction, error)
	GetService(ctx context.Context, id string) (*ledger.ManagedService, error)
	ListServices(ctx context.Context) []*ledger.ManagedService
	LogDecision(ctx context.Context, req portfolio.DecisionRequest) (*ledger.Decision, error)
	ResolveDecision(ctx context.Context, id string, outcome ledger.DecisionOutcome) (*ledger.Decision, error)
	ListDecisions(ctx context.Context, pendingOnly bool) []*ledger.Decision
	AddOpportunity(ctx context.Context, req portfolio.OpportunityRequest) (*ledger.MarketOpportunity, error)
	AdvanceOpportunity(ctx context.Context, id string, status ledger.OpportunityStatus) (*ledger.MarketOpportunity, error)
	ListOpportunities(ctx context.Context) []*ledger.MarketOpportunity
	ListCustomers(ctx context.Context) []*ledger.Customer
	SaveSnapshot(ctx context.Context, sessionNote string, priorities []string) (*ledger.BusinessSnapshot, error)
	LatestSnapshot(ctx context.Context) *ledger.BusinessSnapshot
}

// InsightService defines interaction and auxiliary-record operations needed
// by MCP.
type InsightService interface {
	LogInteraction(ctx context.Context, userMessage, response string) (*insight.InteractionResult, error)
	LogBlocker(ctx context.Context, req insight.BlockerRequest) (*ledger.Blocker, error)
	UpdateBlockerStatus(ctx context.Context, id string, status ledger.BlockerStatus) (*ledger.Blocker, error)
	LogDiscovery(ctx context.Context, discoveryType, description string) (*ledger.TechnicalDiscovery, error)
	LogMilestone(ctx context.Context, description string) (*ledger.ProgressMilestone, error)
	SessionContext(ctx context.Context, req insight.ContextRequest) insight.ContextSnapshot
}

// AnalyticsService defines read-side rollups needed by MCP.
type AnalyticsService interface {
	RevenueReport(ctx context.Context, timeframeDays int, serviceID string) analytics.RevenueReport
	PortfolioSummary(ctx context.Context) analytics.PortfolioSummary
}

// Services contains all domain services needed by MCP.
type Services struct {
	Portfolio PortfolioService
	Insight   InsightService
	Analytics AnalyticsService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and
// middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "ledgermind",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerPortfolioTools(server, cfg.Services.Portfolio)
	registerInsightTools(server, cfg.Services.Insight)
	registerAnalyticsTools(server, cfg.Services.Analytics)

	return server
}
