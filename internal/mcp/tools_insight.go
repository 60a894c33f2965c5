package mcp

import (
	"context"
	"fmt"

	"github.com/hyperfocal/ledgermind/internal/domain/insight"
	"github.com/hyperfocal/ledgermind/internal/ledger"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerInsightTools(server *sdkmcp.Server, svc InsightService) {
	sdkmcp.AddTool(server, logInteractionTool(), logInteractionHandler(svc))
	sdkmcp.AddTool(server, logBlockerTool(), logBlockerHandler(svc))
	sdkmcp.AddTool(server, updateBlockerStatusTool(), updateBlockerStatusHandler(svc))
	sdkmcp.AddTool(server, logDiscoveryTool(), logDiscoveryHandler(svc))
	sdkmcp.AddTool(server, logMilestoneTool(), logMilestoneHandler(svc))
	sdkmcp.AddTool(server, getSessionContextTool(), getSessionContextHandler(svc))
}

type LogInteractionInput struct {
	UserMessage string `json:"user_message" jsonschema:"the external request text"`
	Response    string `json:"response" jsonschema:"the generated response text"`
}

type LogInteractionResult struct {
	Interaction ledger.InteractionRecord `json:"interaction"`
	Decisions   []ledger.Decision        `json:"extracted_decisions,omitempty"`
	Blockers    []ledger.Blocker         `json:"extracted_blockers,omitempty"`
}

func logInteractionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "log_interaction",
		Description: "Log one request/response exchange; keyword extraction classifies it and materializes decision and blocker records from matched terms",
	}
}

func logInteractionHandler(svc InsightService) sdkmcp.ToolHandlerFor[LogInteractionInput, LogInteractionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input LogInteractionInput) (*sdkmcp.CallToolResult, LogInteractionResult, error) {
		logged, err := svc.LogInteraction(ctx, input.UserMessage, input.Response)
		if err != nil {
			return nil, LogInteractionResult{}, MapError(err)
		}
		result := LogInteractionResult{Interaction: *logged.Record}
		for _, dec := range logged.Decisions {
			result.Decisions = append(result.Decisions, *dec)
		}
		for _, blocker := range logged.Blockers {
			result.Blockers = append(result.Blockers, *blocker)
		}
		return textResult("Logged %s interaction %s (importance %.1f); materialized %d decisions and %d blockers.",
				logged.Record.ContextType, logged.Record.ID, logged.Record.Importance,
				len(result.Decisions), len(result.Blockers)),
			result, nil
	}
}

type LogBlockerInput struct {
	Description string `json:"description" jsonschema:"what is blocking progress"`
	Severity    string `json:"severity,omitempty" jsonschema:"low, medium, high or critical (default medium)"`
	NextSteps   string `json:"next_steps,omitempty" jsonschema:"actionable next steps"`
}

type LogBlockerResult struct {
	Blocker ledger.Blocker `json:"blocker"`
}

func logBlockerTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "log_blocker",
		Description: "Record a blocker in identified status",
	}
}

func logBlockerHandler(svc InsightService) sdkmcp.ToolHandlerFor[LogBlockerInput, LogBlockerResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input LogBlockerInput) (*sdkmcp.CallToolResult, LogBlockerResult, error) {
		blocker, err := svc.LogBlocker(ctx, insight.BlockerRequest{
			Description: input.Description,
			Severity:    input.Severity,
			NextSteps:   input.NextSteps,
		})
		if err != nil {
			return nil, LogBlockerResult{}, MapError(err)
		}
		return textResult("Logged %s-severity blocker %s.", blocker.Severity, blocker.ID),
			LogBlockerResult{Blocker: *blocker}, nil
	}
}

type UpdateBlockerStatusInput struct {
	BlockerID string `json:"blocker_id" jsonschema:"blocker ID"`
	Status    string `json:"status" jsonschema:"investigating, resolved or escalated; resolved and escalated are terminal"`
}

type UpdateBlockerStatusResult struct {
	Blocker ledger.Blocker `json:"blocker"`
}

func updateBlockerStatusTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "update_blocker_status",
		Description: "Advance a blocker's investigation status",
	}
}

func updateBlockerStatusHandler(svc InsightService) sdkmcp.ToolHandlerFor[UpdateBlockerStatusInput, UpdateBlockerStatusResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input UpdateBlockerStatusInput) (*sdkmcp.CallToolResult, UpdateBlockerStatusResult, error) {
		blocker, err := svc.UpdateBlockerStatus(ctx, input.BlockerID, ledger.BlockerStatus(input.Status))
		if err != nil {
			return nil, UpdateBlockerStatusResult{}, MapError(err)
		}
		return textResult("Blocker %s is now %s.", blocker.ID, blocker.Status),
			UpdateBlockerStatusResult{Blocker: *blocker}, nil
	}
}

type LogDiscoveryInput struct {
	Description   string `json:"description" jsonschema:"what was learned"`
	DiscoveryType string `json:"discovery_type,omitempty" jsonschema:"categorization tag (default general)"`
}

type LogDiscoveryResult struct {
	Discovery ledger.TechnicalDiscovery `json:"discovery"`
}

func logDiscoveryTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "log_discovery",
		Description: "Record a technical discovery worth remembering across sessions",
	}
}

func logDiscoveryHandler(svc InsightService) sdkmcp.ToolHandlerFor[LogDiscoveryInput, LogDiscoveryResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input LogDiscoveryInput) (*sdkmcp.CallToolResult, LogDiscoveryResult, error) {
		disc, err := svc.LogDiscovery(ctx, input.DiscoveryType, input.Description)
		if err != nil {
			return nil, LogDiscoveryResult{}, MapError(err)
		}
		return textResult("Logged %s discovery %s.", disc.Type, disc.ID),
			LogDiscoveryResult{Discovery: *disc}, nil
	}
}

type LogMilestoneInput struct {
	Description string `json:"description" jsonschema:"what was achieved"`
}

type LogMilestoneResult struct {
	Milestone ledger.ProgressMilestone `json:"milestone"`
}

func logMilestoneTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "log_milestone",
		Description: "Record a progress milestone",
	}
}

func logMilestoneHandler(svc InsightService) sdkmcp.ToolHandlerFor[LogMilestoneInput, LogMilestoneResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input LogMilestoneInput) (*sdkmcp.CallToolResult, LogMilestoneResult, error) {
		milestone, err := svc.LogMilestone(ctx, input.Description)
		if err != nil {
			return nil, LogMilestoneResult{}, MapError(err)
		}
		return textResult("Logged milestone %s.", milestone.ID),
			LogMilestoneResult{Milestone: *milestone}, nil
	}
}

type GetSessionContextInput struct {
	MaxInteractions    int   `json:"max_interactions,omitempty" jsonschema:"max interaction turns to include (default 10)"`
	IncludeDiscoveries *bool `json:"include_discoveries,omitempty" jsonschema:"include recent discoveries (default true)"`
	IncludeBlockers    *bool `json:"include_blockers,omitempty" jsonschema:"include open blockers (default true)"`
	IncludeMilestones  *bool `json:"include_milestones,omitempty" jsonschema:"include recent milestones (default true)"`
}

type GetSessionContextResult struct {
	Context insight.ContextSnapshot `json:"context"`
}

func getSessionContextTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_session_context",
		Description: "Assemble a bounded snapshot of recent session content for handoff: interactions, discoveries, open blockers, milestones",
	}
}

func getSessionContextHandler(svc InsightService) sdkmcp.ToolHandlerFor[GetSessionContextInput, GetSessionContextResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input GetSessionContextInput) (*sdkmcp.CallToolResult, GetSessionContextResult, error) {
		req := insight.ContextRequest{
			MaxInteractions:    input.MaxInteractions,
			IncludeDiscoveries: boolDefault(input.IncludeDiscoveries, true),
			IncludeBlockers:    boolDefault(input.IncludeBlockers, true),
			IncludeMilestones:  boolDefault(input.IncludeMilestones, true),
		}
		snapshot := svc.SessionContext(ctx, req)
		narrative := fmt.Sprintf("Session %s: %d recent interactions, %d discoveries, %d open blockers, %d milestones.",
			snapshot.Session.SessionID, len(snapshot.Interactions), len(snapshot.Discoveries),
			len(snapshot.OpenBlockers), len(snapshot.Milestones))
		return textResult("%s", narrative), GetSessionContextResult{Context: snapshot}, nil
	}
}

func boolDefault(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
