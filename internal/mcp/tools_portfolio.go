package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerPortfolioTools(server *sdkmcp.Server, svc PortfolioService) {
	sdkmcp.AddTool(server, registerServiceTool(), registerServiceHandler(svc))
	sdkmcp.AddTool(server, updatePerformanceTool(), updatePerformanceHandler(svc))
	sdkmcp.AddTool(server, recordTransactionTool(), recordTransactionHandler(svc))
	sdkmcp.AddTool(server, getServiceTool(), getServiceHandler(svc))
	sdkmcp.AddTool(server, listServicesTool(), listServicesHandler(svc))
	sdkmcp.AddTool(server, logDecisionTool(), logDecisionHandler(svc))
	sdkmcp.AddTool(server, updateDecisionOutcomeTool(), updateDecisionOutcomeHandler(svc))
	sdkmcp.AddTool(server, listDecisionsTool(), listDecisionsHandler(svc))
	sdkmcp.AddTool(server, addOpportunityTool(), addOpportunityHandler(svc))
	sdkmcp.AddTool(server, updateOpportunityStatusTool(), updateOpportunityStatusHandler(svc))
	sdkmcp.AddTool(server, listOpportunitiesTool(), listOpportunitiesHandler(svc))
	sdkmcp.AddTool(server, listCustomersTool(), listCustomersHandler(svc))
	sdkmcp.AddTool(server, saveBusinessStateTool(), saveBusinessStateHandler(svc))
	sdkmcp.AddTool(server, getBusinessStateTool(), getBusinessStateHandler(svc))
}

// textResult wraps a narrative string for the human-readable half of a tool
// response; the structured half travels separately.
func textResult(format string, args ...any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

type RegisterServiceInput struct {
	Name          string   `json:"name" jsonschema:"service display name"`
	Type          string   `json:"type,omitempty" jsonschema:"service category, e.g. saas or content"`
	AutoScale     *bool    `json:"auto_scale,omitempty" jsonschema:"enable automatic lifecycle transitions (default true)"`
	MaxDailySpend *float64 `json:"max_daily_spend,omitempty" jsonschema:"daily spend ceiling in dollars (default 100)"`
	KillThreshold *float64 `json:"kill_threshold,omitempty" jsonschema:"daily-profit floor that triggers auto-kill (default -10)"`
}

type RegisterServiceResult struct {
	Service ledger.ManagedService `json:"service"`
}

func registerServiceTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "register_service",
		Description: "Register a new autonomous revenue-generating service in the portfolio",
	}
}

func registerServiceHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[RegisterServiceInput, RegisterServiceResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input RegisterServiceInput) (*sdkmcp.CallToolResult, RegisterServiceResult, error) {
		created, err := svc.RegisterService(ctx, portfolio.RegisterRequest{
			Name:          input.Name,
			Type:          input.Type,
			AutoScale:     input.AutoScale,
			MaxDailySpend: input.MaxDailySpend,
			KillThreshold: input.KillThreshold,
		})
		if err != nil {
			return nil, RegisterServiceResult{}, MapError(err)
		}
		narrative := textResult("Registered service %q (%s). Auto-scale %v, kill threshold $%.2f/day, spend ceiling $%.2f/day.",
			created.Name, created.ID, created.Scaling.AutoScale, created.Scaling.KillThreshold, created.Scaling.MaxDailySpend)
		return narrative, RegisterServiceResult{Service: *created}, nil
	}
}

type UpdatePerformanceInput struct {
	ServiceID     string             `json:"service_id" jsonschema:"managed service ID"`
	DailyRevenue  float64            `json:"daily_revenue" jsonschema:"revenue for the current day in dollars"`
	DailyCosts    float64            `json:"daily_costs" jsonschema:"costs for the current day in dollars"`
	CustomerCount int                `json:"customer_count,omitempty" jsonschema:"current customer count"`
	Metrics       map[string]float64 `json:"performance_metrics,omitempty" jsonschema:"free-form quality metrics"`
}

type TransitionReport struct {
	From     ledger.ServiceStatus `json:"from"`
	To       ledger.ServiceStatus `json:"to"`
	Decision ledger.Decision      `json:"decision"`
}

type UpdatePerformanceResult struct {
	Service     ledger.ManagedService `json:"service"`
	DailyProfit float64               `json:"daily_profit"`
	Transition  *TransitionReport     `json:"transition,omitempty"`
}

func updatePerformanceTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "update_service_performance",
		Description: "Report a service's daily performance counters; lifecycle rules run synchronously and any transition is included in the result",
	}
}

func updatePerformanceHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[UpdatePerformanceInput, UpdatePerformanceResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input UpdatePerformanceInput) (*sdkmcp.CallToolResult, UpdatePerformanceResult, error) {
		updated, err := svc.UpdatePerformance(ctx, portfolio.PerformanceUpdate{
			ServiceID:     input.ServiceID,
			DailyRevenue:  input.DailyRevenue,
			DailyCosts:    input.DailyCosts,
			CustomerCount: input.CustomerCount,
			Metrics:       input.Metrics,
		})
		if err != nil {
			return nil, UpdatePerformanceResult{}, MapError(err)
		}

		result := UpdatePerformanceResult{
			Service:     *updated.Service,
			DailyProfit: updated.DailyProfit,
		}
		narrative := fmt.Sprintf("Service %q updated: daily profit $%.2f.", updated.Service.Name, updated.DailyProfit)
		if tr := updated.Transition; tr != nil {
			result.Transition = &TransitionReport{From: tr.From, To: tr.To, Decision: *tr.Decision}
			narrative += fmt.Sprintf(" Lifecycle transition %s -> %s (%s, expected impact $%.2f).",
				tr.From, tr.To, tr.Decision.Type, tr.Decision.RevenueImpact)
		}
		return textResult("%s", narrative), result, nil
	}
}

type RecordTransactionInput struct {
	ServiceID     string            `json:"service_id" jsonschema:"managed service ID"`
	Amount        float64           `json:"amount" jsonschema:"transaction amount in the given currency"`
	Currency      string            `json:"currency,omitempty" jsonschema:"ISO currency code (default USD)"`
	CustomerID    string            `json:"customer_id,omitempty" jsonschema:"customer identifier, creates the customer on first sight"`
	ExternalTxnID string            `json:"external_transaction_id,omitempty" jsonschema:"payment processor transaction ID"`
	Metadata      map[string]string `json:"metadata,omitempty" jsonschema:"free-form metadata"`
}

type RecordTransactionResult struct {
	Transaction ledger.Transaction `json:"transaction"`
}

func recordTransactionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "record_transaction",
		Description: "Record a monetary event for a service; the service's daily revenue is recomputed from its transactions",
	}
}

func recordTransactionHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[RecordTransactionInput, RecordTransactionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input RecordTransactionInput) (*sdkmcp.CallToolResult, RecordTransactionResult, error) {
		txn, err := svc.RecordTransaction(ctx, portfolio.TransactionRequest{
			ServiceID:     input.ServiceID,
			Amount:        input.Amount,
			Currency:      input.Currency,
			CustomerID:    input.CustomerID,
			ExternalTxnID: input.ExternalTxnID,
			Metadata:      input.Metadata,
		})
		if err != nil {
			return nil, RecordTransactionResult{}, MapError(err)
		}
		return textResult("Recorded %.2f %s for service %s.", txn.Amount, txn.Currency, txn.ServiceID),
			RecordTransactionResult{Transaction: *txn}, nil
	}
}

type GetServiceInput struct {
	ServiceID string `json:"service_id" jsonschema:"managed service ID"`
}

type GetServiceResult struct {
	Service ledger.ManagedService `json:"service"`
}

func getServiceTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_service",
		Description: "Get one managed service by ID",
	}
}

func getServiceHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[GetServiceInput, GetServiceResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input GetServiceInput) (*sdkmcp.CallToolResult, GetServiceResult, error) {
		found, err := svc.GetService(ctx, input.ServiceID)
		if err != nil {
			return nil, GetServiceResult{}, MapError(err)
		}
		return textResult("Service %q is %s: daily revenue $%.2f, daily costs $%.2f.",
				found.Name, found.Status, found.DailyRevenue, found.DailyCosts),
			GetServiceResult{Service: *found}, nil
	}
}

type ListServicesInput struct{}

type ListServicesResult struct {
	Services []ledger.ManagedService `json:"services"`
}

func listServicesTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_services",
		Description: "List all managed services, including killed ones kept for history",
	}
}

func listServicesHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[ListServicesInput, ListServicesResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListServicesInput) (*sdkmcp.CallToolResult, ListServicesResult, error) {
		services := svc.ListServices(ctx)
		result := ListServicesResult{Services: make([]ledger.ManagedService, 0, len(services))}
		for _, s := range services {
			result.Services = append(result.Services, *s)
		}
		return textResult("Portfolio has %d services.", len(result.Services)), result, nil
	}
}

type LogDecisionInput struct {
	Type            string  `json:"type" jsonschema:"decision type, e.g. pricing_change"`
	Context         string  `json:"context,omitempty" jsonschema:"free-text context and reasoning"`
	Outcome         string  `json:"outcome,omitempty" jsonschema:"approved, denied or pending (default pending)"`
	ExpectedRevenue float64 `json:"expected_revenue,omitempty" jsonschema:"expected revenue delta in dollars"`
	Risk            string  `json:"risk,omitempty" jsonschema:"low, medium or high (default medium)"`
	Confidence      float64 `json:"confidence,omitempty" jsonschema:"confidence in [0,1] (default 0.5)"`
}

type LogDecisionResult struct {
	Decision ledger.Decision `json:"decision"`
}

func logDecisionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "log_decision",
		Description: "Log a business decision with justification and estimated impact",
	}
}

func logDecisionHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[LogDecisionInput, LogDecisionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input LogDecisionInput) (*sdkmcp.CallToolResult, LogDecisionResult, error) {
		confidence := input.Confidence
		if confidence == 0 {
			confidence = 0.5
		}
		dec, err := svc.LogDecision(ctx, portfolio.DecisionRequest{
			Type:            input.Type,
			Context:         input.Context,
			Outcome:         ledger.DecisionOutcome(input.Outcome),
			ExpectedRevenue: input.ExpectedRevenue,
			Risk:            input.Risk,
			Confidence:      confidence,
		})
		if err != nil {
			return nil, LogDecisionResult{}, MapError(err)
		}
		return textResult("Logged %s decision %s (%s, risk %s).", dec.Type, dec.ID, dec.Outcome, dec.Risk),
			LogDecisionResult{Decision: *dec}, nil
	}
}

type UpdateDecisionOutcomeInput struct {
	DecisionID string `json:"decision_id" jsonschema:"decision ID"`
	Outcome    string `json:"outcome" jsonschema:"approved, denied or pending"`
}

type UpdateDecisionOutcomeResult struct {
	Decision ledger.Decision `json:"decision"`
}

func updateDecisionOutcomeTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "update_decision_outcome",
		Description: "Resolve a pending decision to its final outcome",
	}
}

func updateDecisionOutcomeHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[UpdateDecisionOutcomeInput, UpdateDecisionOutcomeResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input UpdateDecisionOutcomeInput) (*sdkmcp.CallToolResult, UpdateDecisionOutcomeResult, error) {
		dec, err := svc.ResolveDecision(ctx, input.DecisionID, ledger.DecisionOutcome(input.Outcome))
		if err != nil {
			return nil, UpdateDecisionOutcomeResult{}, MapError(err)
		}
		return textResult("Decision %s is now %s.", dec.ID, dec.Outcome),
			UpdateDecisionOutcomeResult{Decision: *dec}, nil
	}
}

type ListDecisionsInput struct {
	PendingOnly bool `json:"pending_only,omitempty" jsonschema:"return only unresolved decisions"`
}

type ListDecisionsResult struct {
	Decisions []ledger.Decision `json:"decisions"`
}

func listDecisionsTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_decisions",
		Description: "List logged decisions, newest first",
	}
}

func listDecisionsHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[ListDecisionsInput, ListDecisionsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input ListDecisionsInput) (*sdkmcp.CallToolResult, ListDecisionsResult, error) {
		decisions := svc.ListDecisions(ctx, input.PendingOnly)
		result := ListDecisionsResult{Decisions: make([]ledger.Decision, 0, len(decisions))}
		for _, dec := range decisions {
			result.Decisions = append(result.Decisions, *dec)
		}
		return textResult("Found %d decisions.", len(result.Decisions)), result, nil
	}
}

type AddOpportunityInput struct {
	Description     string   `json:"description" jsonschema:"what the opportunity is"`
	MarketSize      *float64 `json:"market_size,omitempty" jsonschema:"estimated market size in dollars"`
	Competition     *float64 `json:"competition,omitempty" jsonschema:"competition intensity estimate"`
	ProfitPotential *float64 `json:"profit_potential,omitempty" jsonschema:"estimated monthly profit in dollars"`
	EffortDays      *float64 `json:"effort_days,omitempty" jsonschema:"estimated build effort in days"`
}

type AddOpportunityResult struct {
	Opportunity ledger.MarketOpportunity `json:"opportunity"`
}

func addOpportunityTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "add_opportunity",
		Description: "Record a newly discovered market opportunity",
	}
}

func addOpportunityHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[AddOpportunityInput, AddOpportunityResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input AddOpportunityInput) (*sdkmcp.CallToolResult, AddOpportunityResult, error) {
		opp, err := svc.AddOpportunity(ctx, portfolio.OpportunityRequest{
			Description:     input.Description,
			MarketSize:      input.MarketSize,
			Competition:     input.Competition,
			ProfitPotential: input.ProfitPotential,
			EffortDays:      input.EffortDays,
		})
		if err != nil {
			return nil, AddOpportunityResult{}, MapError(err)
		}
		return textResult("Recorded opportunity %s in %s status.", opp.ID, opp.Status),
			AddOpportunityResult{Opportunity: *opp}, nil
	}
}

type UpdateOpportunityStatusInput struct {
	OpportunityID string `json:"opportunity_id" jsonschema:"opportunity ID"`
	Status        string `json:"status" jsonschema:"analyzing, implementing, deployed or failed; forward-only"`
}

type UpdateOpportunityStatusResult struct {
	Opportunity ledger.MarketOpportunity `json:"opportunity"`
}

func updateOpportunityStatusTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "update_opportunity_status",
		Description: "Advance an opportunity through its pipeline; status moves forward only, except an explicit failed",
	}
}

func updateOpportunityStatusHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[UpdateOpportunityStatusInput, UpdateOpportunityStatusResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input UpdateOpportunityStatusInput) (*sdkmcp.CallToolResult, UpdateOpportunityStatusResult, error) {
		opp, err := svc.AdvanceOpportunity(ctx, input.OpportunityID, ledger.OpportunityStatus(input.Status))
		if err != nil {
			return nil, UpdateOpportunityStatusResult{}, MapError(err)
		}
		return textResult("Opportunity %s is now %s.", opp.ID, opp.Status),
			UpdateOpportunityStatusResult{Opportunity: *opp}, nil
	}
}

type ListCustomersInput struct{}

type ListCustomersResult struct {
	Customers []ledger.Customer `json:"customers"`
}

func listCustomersTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_customers",
		Description: "List all customers with cumulative spend",
	}
}

func listCustomersHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[ListCustomersInput, ListCustomersResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListCustomersInput) (*sdkmcp.CallToolResult, ListCustomersResult, error) {
		customers := svc.ListCustomers(ctx)
		result := ListCustomersResult{Customers: make([]ledger.Customer, 0, len(customers))}
		for _, cust := range customers {
			result.Customers = append(result.Customers, *cust)
		}
		return textResult("Tracking %d customers.", len(result.Customers)), result, nil
	}
}

type SaveBusinessStateInput struct {
	SessionNote string   `json:"session_note,omitempty" jsonschema:"free-text note for the next session"`
	Priorities  []string `json:"priorities,omitempty" jsonschema:"ordered priorities for the next session"`
}

type SaveBusinessStateResult struct {
	Snapshot ledger.BusinessSnapshot `json:"snapshot"`
}

func saveBusinessStateTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "save_business_state",
		Description: "Save an immutable point-in-time snapshot of the whole portfolio for session handoff",
	}
}

func saveBusinessStateHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[SaveBusinessStateInput, SaveBusinessStateResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SaveBusinessStateInput) (*sdkmcp.CallToolResult, SaveBusinessStateResult, error) {
		snap, err := svc.SaveSnapshot(ctx, input.SessionNote, input.Priorities)
		if err != nil {
			return nil, SaveBusinessStateResult{}, MapError(err)
		}
		return textResult("Saved snapshot %s: %d operating services, daily revenue $%.2f, daily costs $%.2f, %d pending decisions.",
				snap.ID, snap.ActiveServices, snap.TotalDailyRevenue, snap.TotalDailyCosts, len(snap.PendingDecisionIDs)),
			SaveBusinessStateResult{Snapshot: *snap}, nil
	}
}

type GetBusinessStateInput struct{}

type GetBusinessStateResult struct {
	Snapshot *ledger.BusinessSnapshot `json:"snapshot,omitempty"`
	Services []ledger.ManagedService  `json:"services"`
}

func getBusinessStateTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_business_state",
		Description: "Get the latest saved snapshot plus the live service list",
	}
}

func getBusinessStateHandler(svc PortfolioService) sdkmcp.ToolHandlerFor[GetBusinessStateInput, GetBusinessStateResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ GetBusinessStateInput) (*sdkmcp.CallToolResult, GetBusinessStateResult, error) {
		result := GetBusinessStateResult{Snapshot: svc.LatestSnapshot(ctx)}
		services := svc.ListServices(ctx)
		result.Services = make([]ledger.ManagedService, 0, len(services))
		for _, s := range services {
			result.Services = append(result.Services, *s)
		}

		var lines []string
		if result.Snapshot == nil {
			lines = append(lines, "No snapshot saved yet.")
		} else {
			lines = append(lines, fmt.Sprintf("Latest snapshot %s.", result.Snapshot.ID))
			if result.Snapshot.SessionNote != "" {
				lines = append(lines, "Note: "+result.Snapshot.SessionNote)
			}
		}
		lines = append(lines, fmt.Sprintf("%d services tracked.", len(result.Services)))
		return textResult("%s", strings.Join(lines, " ")), result, nil
	}
}
