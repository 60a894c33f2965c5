package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hyperfocal/ledgermind/internal/domain/analytics"
	"github.com/hyperfocal/ledgermind/internal/domain/insight"
	"github.com/hyperfocal/ledgermind/internal/domain/portfolio"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/storage"
	"github.com/hyperfocal/ledgermind/internal/store"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newTestStack(t *testing.T) Services {
	t.Helper()
	backend := storage.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))
	st, err := store.Open(context.Background(), backend, nil)
	require.NoError(t, err)

	portfolioSvc := portfolio.NewService(st, portfolio.Defaults{
		AutoScale:      true,
		MaxDailySpend:  100,
		KillThreshold:  -10,
		ScaleThreshold: 50,
	}, nil)
	return Services{
		Portfolio: portfolioSvc,
		Insight:   insight.NewService(st, portfolioSvc, nil),
		Analytics: analytics.NewService(st),
	}
}

func textOf(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegisterServiceHandler(t *testing.T) {
	services := newTestStack(t)
	handler := registerServiceHandler(services.Portfolio)

	res, out, err := handler(context.Background(), nil, RegisterServiceInput{Name: "qr-codes", Type: "saas"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Service.ID)
	require.Equal(t, ledger.StatusActive, out.Service.Status)
	require.Contains(t, textOf(t, res), "qr-codes")
}

func TestRegisterServiceHandler_ValidationError(t *testing.T) {
	services := newTestStack(t)
	handler := registerServiceHandler(services.Portfolio)

	_, _, err := handler(context.Background(), nil, RegisterServiceInput{Name: ""})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestUpdatePerformanceHandler_ReportsTransition(t *testing.T) {
	services := newTestStack(t)
	_, reg, err := registerServiceHandler(services.Portfolio)(context.Background(), nil,
		RegisterServiceInput{Name: "loser"})
	require.NoError(t, err)

	res, out, err := updatePerformanceHandler(services.Portfolio)(context.Background(), nil,
		UpdatePerformanceInput{ServiceID: reg.Service.ID, DailyRevenue: 5, DailyCosts: 20})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusKilled, out.Service.Status)
	require.NotNil(t, out.Transition)
	require.Equal(t, ledger.StatusKilled, out.Transition.To)
	require.Contains(t, textOf(t, res), "active -> killed")
}

func TestRecordTransactionHandler_UnknownService(t *testing.T) {
	services := newTestStack(t)
	_, _, err := recordTransactionHandler(services.Portfolio)(context.Background(), nil,
		RecordTransactionInput{ServiceID: "missing", Amount: 10})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "SERVICE_NOT_FOUND", apiErr.Code)
	require.NotEmpty(t, apiErr.RecoveryHint)
}

func TestLogDecisionHandler_DefaultConfidence(t *testing.T) {
	services := newTestStack(t)
	_, out, err := logDecisionHandler(services.Portfolio)(context.Background(), nil,
		LogDecisionInput{Type: "pricing_change"})
	require.NoError(t, err)
	require.InDelta(t, 0.5, out.Decision.Confidence, 1e-9)
	require.Equal(t, ledger.OutcomePending, out.Decision.Outcome)
}

func TestOpportunityHandlers(t *testing.T) {
	services := newTestStack(t)
	profit := 400.0
	_, added, err := addOpportunityHandler(services.Portfolio)(context.Background(), nil,
		AddOpportunityInput{Description: "webhook relay", ProfitPotential: &profit})
	require.NoError(t, err)

	_, updated, err := updateOpportunityStatusHandler(services.Portfolio)(context.Background(), nil,
		UpdateOpportunityStatusInput{OpportunityID: added.Opportunity.ID, Status: "analyzing"})
	require.NoError(t, err)
	require.Equal(t, ledger.OpportunityAnalyzing, updated.Opportunity.Status)

	_, _, err = updateOpportunityStatusHandler(services.Portfolio)(context.Background(), nil,
		UpdateOpportunityStatusInput{OpportunityID: added.Opportunity.ID, Status: "discovered"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_TRANSITION", apiErr.Code)

	_, listed, err := listOpportunitiesHandler(services.Portfolio)(context.Background(), nil, ListOpportunitiesInput{})
	require.NoError(t, err)
	require.Len(t, listed.Opportunities, 1)
}

func TestBusinessStateHandlers_RoundTrip(t *testing.T) {
	services := newTestStack(t)

	_, empty, err := getBusinessStateHandler(services.Portfolio)(context.Background(), nil, GetBusinessStateInput{})
	require.NoError(t, err)
	require.Nil(t, empty.Snapshot)

	_, reg, err := registerServiceHandler(services.Portfolio)(context.Background(), nil,
		RegisterServiceInput{Name: "shop"})
	require.NoError(t, err)
	_, _, err = recordTransactionHandler(services.Portfolio)(context.Background(), nil,
		RecordTransactionInput{ServiceID: reg.Service.ID, Amount: 25, CustomerID: "cust-1"})
	require.NoError(t, err)

	_, saved, err := saveBusinessStateHandler(services.Portfolio)(context.Background(), nil,
		SaveBusinessStateInput{SessionNote: "end of day", Priorities: []string{"ship relay"}})
	require.NoError(t, err)
	require.Equal(t, 1, saved.Snapshot.ActiveServices)

	_, got, err := getBusinessStateHandler(services.Portfolio)(context.Background(), nil, GetBusinessStateInput{})
	require.NoError(t, err)
	require.NotNil(t, got.Snapshot)
	require.Equal(t, saved.Snapshot.ID, got.Snapshot.ID)
	require.Len(t, got.Services, 1)
}

func TestLogInteractionHandler_MaterializesRecords(t *testing.T) {
	services := newTestStack(t)
	res, out, err := logInteractionHandler(services.Insight)(context.Background(), nil,
		LogInteractionInput{UserMessage: "we decided to ship despite the open issue"})
	require.NoError(t, err)
	require.Len(t, out.Decisions, 1)
	require.Len(t, out.Blockers, 1)
	require.Contains(t, textOf(t, res), "materialized 1 decisions and 1 blockers")
}

func TestBlockerHandlers(t *testing.T) {
	services := newTestStack(t)
	_, logged, err := logBlockerHandler(services.Insight)(context.Background(), nil,
		LogBlockerInput{Description: "stripe review pending", Severity: "high"})
	require.NoError(t, err)
	require.Equal(t, "high", logged.Blocker.Severity)

	_, updated, err := updateBlockerStatusHandler(services.Insight)(context.Background(), nil,
		UpdateBlockerStatusInput{BlockerID: logged.Blocker.ID, Status: "resolved"})
	require.NoError(t, err)
	require.Equal(t, ledger.BlockerResolved, updated.Blocker.Status)

	_, _, err = updateBlockerStatusHandler(services.Insight)(context.Background(), nil,
		UpdateBlockerStatusInput{BlockerID: "missing", Status: "investigating"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "BLOCKER_NOT_FOUND", apiErr.Code)
}

func TestGetSessionContextHandler_DefaultsIncludeEverything(t *testing.T) {
	services := newTestStack(t)
	_, _, err := logDiscoveryHandler(services.Insight)(context.Background(), nil,
		LogDiscoveryInput{Description: "cold starts add 300ms", DiscoveryType: "performance"})
	require.NoError(t, err)
	_, _, err = logMilestoneHandler(services.Insight)(context.Background(), nil,
		LogMilestoneInput{Description: "first paying customer"})
	require.NoError(t, err)

	_, out, err := getSessionContextHandler(services.Insight)(context.Background(), nil, GetSessionContextInput{})
	require.NoError(t, err)
	require.Len(t, out.Context.Discoveries, 1)
	require.Len(t, out.Context.Milestones, 1)

	off := false
	_, out, err = getSessionContextHandler(services.Insight)(context.Background(), nil,
		GetSessionContextInput{IncludeDiscoveries: &off})
	require.NoError(t, err)
	require.Empty(t, out.Context.Discoveries)
	require.Len(t, out.Context.Milestones, 1)
}

func TestAnalyticsHandlers(t *testing.T) {
	services := newTestStack(t)
	_, reg, err := registerServiceHandler(services.Portfolio)(context.Background(), nil,
		RegisterServiceInput{Name: "shop"})
	require.NoError(t, err)
	_, _, err = recordTransactionHandler(services.Portfolio)(context.Background(), nil,
		RecordTransactionInput{ServiceID: reg.Service.ID, Amount: 120})
	require.NoError(t, err)

	_, rev, err := revenueAnalyticsHandler(services.Analytics)(context.Background(), nil,
		RevenueAnalyticsInput{TimeframeDays: 7})
	require.NoError(t, err)
	require.Equal(t, 1, rev.Report.TransactionCount)
	require.InDelta(t, 120.0, rev.Report.TotalRevenue, 1e-9)

	_, sum, err := portfolioSummaryHandler(services.Analytics)(context.Background(), nil, PortfolioSummaryInput{})
	require.NoError(t, err)
	require.Equal(t, 1, sum.Summary.OperatingServices)
}

func TestMapError(t *testing.T) {
	require.NoError(t, MapError(nil))

	wrapped := fmt.Errorf("lookup: %w", portfolio.ErrServiceNotFound)
	var apiErr *APIError
	require.ErrorAs(t, MapError(wrapped), &apiErr)
	require.Equal(t, "SERVICE_NOT_FOUND", apiErr.Code)

	unknown := errors.New("disk on fire")
	require.Equal(t, unknown, MapError(unknown))
}
