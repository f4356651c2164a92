package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/trungvq/workmate/internal/agent"
	"github.com/trungvq/workmate/internal/conversation"
	"github.com/trungvq/workmate/internal/history"
	"github.com/trungvq/workmate/internal/logger"
	"github.com/trungvq/workmate/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Trò chuyện trực tiếp trong terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	// Structured logs go to stderr in text form so the transcript stays clean.
	logger.UseText(os.Stderr)

	renderer := ui.NewRenderer()

	rt, err := buildRuntime(ctx, cfg,
		agent.WithStepObserver(func(ev agent.StepEvent) {
			switch ev.Kind {
			case agent.StepToolCall:
				fmt.Println(renderer.ToolCall(ev.ToolName, ev.Content))
			case agent.StepToolResult:
				fmt.Println(renderer.ToolResult(ev.ToolName, ev.Content))
			}
		}))
	if err != nil {
		return err
	}
	defer rt.cleanup()

	store := history.Open(cfg.History.Path)
	defer store.Close()

	sessionID := uuid.NewString()
	conv := conversation.New(rt.systemPrompt)

	fmt.Println(renderer.Banner(cfg.Agent.Type))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(renderer.Prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			fmt.Println(renderer.System("Tạm biệt!"))
			break
		}

		before := conv.Len()
		conv.AddUser(input)

		answer, err := rt.loop.Invoke(ctx, conv)
		if err != nil {
			fmt.Println(renderer.Error(err))
			persistTurn(store, sessionID, conv, before)
			continue
		}

		fmt.Println(renderer.Assistant(answer))
		persistTurn(store, sessionID, conv, before)
	}
	return scanner.Err()
}
