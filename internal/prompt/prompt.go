// Package prompt builds the system prompt for each agent type. Prompts are
// markdown files in the configured directory, with built-in instructions as
// fallback, and support {current_time} and {start_of_day} placeholders.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trungvq/workmate/internal/logger"
)

// Agent types selectable at the shell.
const (
	TypeTasks    = "tasks"
	TypeCalendar = "calendar"
	TypeGmail    = "gmail"
	TypeAll      = "all"
)

// Types lists the known agent types in presentation order.
func Types() []string {
	return []string{TypeAll, TypeTasks, TypeCalendar, TypeGmail}
}

// Known reports whether agentType names a known agent type.
func Known(agentType string) bool {
	for _, t := range Types() {
		if t == agentType {
			return true
		}
	}
	return false
}

// Load returns the system prompt for agentType with time placeholders filled
// in against now in loc. A file named <agentType>_agent_prompt.md in dir takes
// precedence over the built-in prompt.
func Load(dir, agentType string, now time.Time, loc *time.Location) (string, error) {
	builtin, ok := builtins[agentType]
	if !ok {
		return "", fmt.Errorf("loại agent không hợp lệ: %q (hợp lệ: %s)", agentType, strings.Join(Types(), ", "))
	}

	template := builtin
	if dir != "" {
		path := filepath.Join(dir, agentType+"_agent_prompt.md")
		if raw, err := os.ReadFile(path); err == nil {
			template = string(raw)
		} else if !os.IsNotExist(err) {
			logger.L.Warn("failed to read prompt file; using built-in prompt", "path", path, "error", err)
		}
	}

	local := now.In(loc)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return strings.NewReplacer(
		"{current_time}", local.Format(time.RFC3339),
		"{start_of_day}", startOfDay.Format(time.RFC3339),
	).Replace(template), nil
}
