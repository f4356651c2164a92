package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const toolOutputPreviewLimit = 300

// Renderer formats chat shell output with a consistent style set.
type Renderer struct {
	styles Styles
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// Banner renders the startup banner naming the active agent type.
func (r *Renderer) Banner(agentType string) string {
	title := r.styles.BannerTitle.Render("workmate")
	subtitle := r.styles.SystemMessage.Render(fmt.Sprintf("trợ lý %s · gõ 'exit' để thoát", agentType))
	return r.styles.Banner.Render(lipgloss.JoinVertical(lipgloss.Left, title, subtitle))
}

// Prompt renders the input prompt prefix.
func (r *Renderer) Prompt() string {
	return r.styles.Prompt.Render(">> Bạn: ")
}

// User renders an echoed user message.
func (r *Renderer) User(content string) string {
	return r.styles.UserMessage.Render("Bạn: " + content)
}

// Assistant renders the agent's final answer.
func (r *Renderer) Assistant(content string) string {
	return r.styles.AssistantMessage.Render(">> Agent: " + content)
}

// System renders an informational shell message.
func (r *Renderer) System(content string) string {
	return r.styles.SystemMessage.Render(content)
}

// Error renders a failure message.
func (r *Renderer) Error(err error) string {
	return r.styles.ErrorMessage.Render("Lỗi: " + err.Error())
}

// ToolCall renders a tool invocation as it is dispatched.
func (r *Renderer) ToolCall(name, args string) string {
	out := r.styles.ToolName.Render("⚙ " + name)
	if args != "" && args != "{}" {
		out += " " + r.styles.ToolParams.Render(args)
	}
	return out
}

// ToolResult renders a tool result, truncated to keep the transcript readable.
func (r *Renderer) ToolResult(name, result string) string {
	preview := result
	if runes := []rune(preview); len(runes) > toolOutputPreviewLimit {
		preview = string(runes[:toolOutputPreviewLimit]) + "..."
	}
	lines := strings.Split(preview, "\n")
	for i, line := range lines {
		lines[i] = r.styles.ToolOutput.Render("| " + line)
	}
	return r.styles.ToolName.Render("⚙ "+name) + "\n" + strings.Join(lines, "\n")
}

// ToolList renders the registered tools with their descriptions.
func (r *Renderer) ToolList(items [][2]string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(r.styles.ToolName.Render(it[0]))
		b.WriteString("\n")
		b.WriteString(r.styles.ToolOutput.Render(it[1]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
