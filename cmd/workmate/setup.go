package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trungvq/workmate/internal/agent"
	"github.com/trungvq/workmate/internal/config"
	"github.com/trungvq/workmate/internal/google"
	"github.com/trungvq/workmate/internal/llm"
	"github.com/trungvq/workmate/internal/logger"
	"github.com/trungvq/workmate/internal/prompt"
	"github.com/trungvq/workmate/internal/tools"
)

// runtime bundles everything a shell needs to drive conversations.
type runtime struct {
	loop         *agent.Loop
	registry     *tools.Registry
	systemPrompt string
	cleanup      func()
}

// credentials picks the token strategy: a fixed access token from config wins,
// otherwise the refreshing token file source is used.
func credentials(cfg config.GoogleConfig) google.Credentials {
	if cfg.AccessToken != "" {
		return google.StaticToken(cfg.AccessToken)
	}
	return google.NewTokenSource(cfg.TokenFile, cfg.ClientID, cfg.ClientSecret)
}

// googleTools builds the tool specs for the configured agent type.
func googleTools(cfg *config.Config) ([]tools.Spec, error) {
	creds := credentials(cfg.Google)

	tasksSvc := google.NewTasksService(creds, cfg.Google.TaskListID)
	calendarSvc := google.NewCalendarService(creds, cfg.Google.CalendarID, cfg.Google.TimezoneOffsetHours)
	gmailSvc := google.NewGmailService(creds)

	switch cfg.Agent.Type {
	case prompt.TypeTasks:
		return tasksSvc.Tools(), nil
	case prompt.TypeCalendar:
		return calendarSvc.Tools(), nil
	case prompt.TypeGmail:
		return gmailSvc.Tools(), nil
	case prompt.TypeAll:
		var specs []tools.Spec
		specs = append(specs, tasksSvc.Tools()...)
		specs = append(specs, calendarSvc.Tools()...)
		specs = append(specs, gmailSvc.Tools()...)
		return specs, nil
	default:
		return nil, fmt.Errorf("loại agent không hợp lệ: %q", cfg.Agent.Type)
	}
}

// buildRuntime wires config into a ready control loop: credentials, Google
// services, MCP discovery, LLM client, reasoner, executor.
func buildRuntime(ctx context.Context, cfg *config.Config, opts ...agent.Option) (*runtime, error) {
	specs, err := googleTools(cfg)
	if err != nil {
		return nil, err
	}

	mcpSpecs, closeMCP, err := tools.DiscoverMCP(ctx, cfg.MCPServers)
	if err != nil {
		return nil, fmt.Errorf("khám phá công cụ MCP thất bại: %w", err)
	}
	specs = append(specs, mcpSpecs...)

	registry, err := tools.NewRegistry(specs...)
	if err != nil {
		closeMCP()
		return nil, err
	}

	loc := time.FixedZone(fmt.Sprintf("UTC%+d", cfg.Google.TimezoneOffsetHours), cfg.Google.TimezoneOffsetHours*3600)
	systemPrompt, err := prompt.Load(cfg.Agent.PromptDir, cfg.Agent.Type, time.Now(), loc)
	if err != nil {
		closeMCP()
		return nil, err
	}

	client := llm.NewClient(cfg.LLM)
	reasoner := agent.NewReasoner(client, cfg.LLM.Model, registry)
	executor := agent.NewExecutor(registry, time.Duration(cfg.Agent.ToolTimeoutSeconds)*time.Second)

	opts = append([]agent.Option{agent.WithMaxTurns(cfg.Agent.MaxTurns)}, opts...)
	loop := agent.NewLoop(reasoner, executor, opts...)

	logger.L.Info("runtime ready",
		"agent_type", cfg.Agent.Type,
		"model", cfg.LLM.Model,
		"tools", len(registry.List()))

	return &runtime{
		loop:         loop,
		registry:     registry,
		systemPrompt: systemPrompt,
		cleanup:      closeMCP,
	}, nil
}
