package response

import (
	"context"
	"fmt"
	"strings"

	"manual-assistant-be/internal/constant"
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/store"
)

// Generator builds the final answer for a deep-reading query, strictly from
// the retrieved evidence fragments plus a short slice of history.
type Generator struct {
	llmProvider llm.Provider
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.Provider, log logger.ILogger) *Generator {
	return &Generator{llmProvider: llmProvider, logger: log}
}

// GenerateAnswer answers the query from the evidence set of the active
// document. The system prompt depends on the session profile.
func (g *Generator) GenerateAnswer(
	ctx context.Context,
	query string,
	document *store.Candidate,
	evidence []store.Evidence,
	profile string,
	history []llm.Message,
) string {
	if len(evidence) == 0 {
		return NothingInDocument(document.DisplayName)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: systemPromptFor(profile),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: g.buildEvidencePrompt(query, document, evidence),
	})

	answer, err := g.llmProvider.Chat(ctx, messages)
	if err != nil {
		g.logger.Error("GENERATOR", "Answer generation failed", map[string]interface{}{
			"document": document.DisplayName,
			"error":    err.Error(),
		})
		return TemporarilyUnavailable()
	}

	g.logger.Info("GENERATOR", "Answer generated", map[string]interface{}{
		"document":  document.DisplayName,
		"fragments": len(evidence),
		"profile":   profile,
	})
	return answer
}

func (g *Generator) buildEvidencePrompt(query string, document *store.Candidate, evidence []store.Evidence) string {
	var prompt strings.Builder

	prompt.WriteString("<fragmentos_del_manual>\n")
	prompt.WriteString(fmt.Sprintf("MANUAL: %s\n", document.DisplayName))
	prompt.WriteString("Estos fragmentos son la ÚNICA fuente de información permitida.\n\n")
	for i, ev := range evidence {
		prompt.WriteString(fmt.Sprintf("--- FRAGMENTO %d", i+1))
		if ev.Section != "" {
			prompt.WriteString(" | Sección: " + ev.Section)
		}
		if ev.Page > 0 {
			prompt.WriteString(fmt.Sprintf(" | Página %d", ev.Page))
		}
		if ev.ChunkType != "" && ev.ChunkType != store.ChunkTypeText {
			prompt.WriteString(" | Tipo: " + ev.ChunkType)
		}
		prompt.WriteString(" ---\n")
		prompt.WriteString(ev.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</fragmentos_del_manual>\n\n")

	prompt.WriteString("<pregunta>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</pregunta>\n\n")

	prompt.WriteString("Respondé la pregunta usando únicamente los fragmentos. ")
	prompt.WriteString("Cuando cites un procedimiento, mencioná la sección o página si está disponible.")

	return prompt.String()
}

func systemPromptFor(profile string) string {
	if profile == store.ProfileTechnical {
		return constant.AnswerSystemPromptTechnical
	}
	return constant.AnswerSystemPromptAdmin
}
