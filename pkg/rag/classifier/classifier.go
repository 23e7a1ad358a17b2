package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/store"
)

// Verdict levels. REJECTED is the safe default for every failure path:
// a wrongly rejected manual costs a retry, a wrongly confirmed one costs
// a hallucinated answer.
const (
	LevelConfident = "CONFIDENT"
	LevelPossible  = "POSSIBLE"
	LevelRejected  = "REJECTED"
)

// Verdict is the structural-relevance judgment for one document. The
// classifier only ever sees the document's skeleton (outline, headings,
// opening excerpt), never its full content.
type Verdict struct {
	Level           string   `json:"level"`
	Reason          string   `json:"reason"`
	MatchedSections []string `json:"matched_sections"`
	Confidence      int      `json:"confidence"`
}

// ClassifiedCandidate pairs a routing candidate with its verdict.
type ClassifiedCandidate struct {
	Candidate store.Candidate
	Verdict   Verdict
}

// Buckets partitions classified candidates by verdict level.
type Buckets struct {
	Confident []ClassifiedCandidate
	Possible  []ClassifiedCandidate
	Rejected  []ClassifiedCandidate
}

const maxBatchDocuments = 3

// Classifier judges whether a document's structure suggests it can answer a
// query, without reading the document body.
type Classifier struct {
	llmProvider llm.Provider
	logger      logger.ILogger
}

func NewClassifier(llmProvider llm.Provider, log logger.ILogger) *Classifier {
	return &Classifier{llmProvider: llmProvider, logger: log}
}

// Classify produces a verdict for one document. Degrades to REJECTED on any
// collaborator or parse failure; the returned error is always nil so callers
// never have to branch on it, failures are visible in the verdict itself.
func (c *Classifier) Classify(ctx context.Context, query, docName string, summary *extractor.StructuralSummary) (*Verdict, error) {
	if summary == nil || len(summary.Outline) == 0 {
		return &Verdict{
			Level:      LevelRejected,
			Reason:     "Sin índice estructural disponible para evaluar el documento.",
			Confidence: 0,
		}, nil
	}

	prompt := c.buildPrompt(query, docName, summary)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Warn("CLASSIFIER", "LLM call failed, rejecting document", map[string]interface{}{
			"document": docName,
			"error":    err.Error(),
		})
		return c.rejectedFallback("Evaluación no disponible por un fallo del modelo."), nil
	}

	verdict, err := c.parseVerdict(response)
	if err != nil {
		c.logger.Warn("CLASSIFIER", "Verdict parsing failed, rejecting document", map[string]interface{}{
			"document": docName,
			"error":    err.Error(),
		})
		return c.rejectedFallback("Evaluación no interpretable, documento descartado por seguridad."), nil
	}

	c.logger.Info("CLASSIFIER", "Document classified", map[string]interface{}{
		"document":   docName,
		"level":      verdict.Level,
		"confidence": verdict.Confidence,
	})
	return verdict, nil
}

// ClassifyCandidates classifies up to three candidates sequentially and
// partitions them by verdict. Order within each bucket follows input order.
func (c *Classifier) ClassifyCandidates(ctx context.Context, query string, candidates []store.Candidate, summaries map[string]*extractor.StructuralSummary) Buckets {
	if len(candidates) > maxBatchDocuments {
		candidates = candidates[:maxBatchDocuments]
	}

	var buckets Buckets
	for _, candidate := range candidates {
		verdict, _ := c.Classify(ctx, query, candidate.DisplayName, summaries[candidate.DocumentID])
		classified := ClassifiedCandidate{Candidate: candidate, Verdict: *verdict}
		switch verdict.Level {
		case LevelConfident:
			buckets.Confident = append(buckets.Confident, classified)
		case LevelPossible:
			buckets.Possible = append(buckets.Possible, classified)
		default:
			buckets.Rejected = append(buckets.Rejected, classified)
		}
	}
	return buckets
}

func (c *Classifier) buildPrompt(query, docName string, summary *extractor.StructuralSummary) string {
	var prompt strings.Builder

	prompt.WriteString("Eres un evaluador de relevancia documental. Tu ÚNICA tarea es juzgar si un manual,\n")
	prompt.WriteString("visto solo por su estructura, puede contener la respuesta a una consulta.\n")
	prompt.WriteString("NO respondes la consulta. Solo evalúas el documento.\n\n")

	prompt.WriteString("<consulta>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</consulta>\n\n")

	prompt.WriteString("<documento>\n")
	prompt.WriteString(fmt.Sprintf("NOMBRE: %s\n", docName))
	if summary.Title != "" {
		prompt.WriteString(fmt.Sprintf("TITULO: %s\n", summary.Title))
	}
	if len(summary.Outline) > 0 {
		prompt.WriteString("INDICE:\n")
		for _, entry := range summary.Outline {
			prompt.WriteString("  - " + entry + "\n")
		}
	}
	if len(summary.KeyHeadings) > 0 {
		prompt.WriteString("ENCABEZADOS DETECTADOS:\n")
		for _, heading := range summary.KeyHeadings {
			prompt.WriteString("  - " + heading + "\n")
		}
	}
	if summary.OpeningExcerpt != "" {
		prompt.WriteString("EXTRACTO INICIAL:\n")
		prompt.WriteString(summary.OpeningExcerpt + "\n")
	}
	prompt.WriteString("</documento>\n\n")

	prompt.WriteString("<niveles>\n")
	prompt.WriteString("CONFIDENT: el índice o los encabezados nombran directamente el tema de la consulta.\n")
	prompt.WriteString("  Ejemplo: consulta \"cómo anular una factura\" y el índice contiene \"Anulación de comprobantes\".\n")
	prompt.WriteString("POSSIBLE: el documento trata el área general pero ninguna sección nombra el tema.\n")
	prompt.WriteString("  Ejemplo: consulta \"retenciones de IIBB\" y el manual es de facturación sin sección de retenciones.\n")
	prompt.WriteString("REJECTED: el documento pertenece a otro dominio.\n")
	prompt.WriteString("  Ejemplo: consulta \"alta de artículos\" y el manual es de liquidación de sueldos.\n")
	prompt.WriteString("</niveles>\n\n")

	prompt.WriteString("Responde SOLO con JSON válido, sin texto adicional:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"level\": \"CONFIDENT|POSSIBLE|REJECTED\",\n")
	prompt.WriteString("  \"reason\": \"explicación breve en español (mínimo una oración)\",\n")
	prompt.WriteString("  \"matched_sections\": [\"secciones del índice que coinciden, si las hay\"],\n")
	prompt.WriteString("  \"confidence\": 85\n")
	prompt.WriteString("}")

	return prompt.String()
}

func (c *Classifier) parseVerdict(response string) (*Verdict, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var verdict Verdict
	decoder := json.NewDecoder(bytes.NewReader([]byte(jsonContent)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&verdict); err != nil {
		return nil, fmt.Errorf("verdict decode failed: %w", err)
	}

	verdict.Level = strings.ToUpper(strings.TrimSpace(verdict.Level))
	switch verdict.Level {
	case LevelConfident, LevelPossible, LevelRejected:
	default:
		return nil, fmt.Errorf("unknown verdict level %q", verdict.Level)
	}

	verdict.Reason = strings.TrimSpace(verdict.Reason)
	if len([]rune(verdict.Reason)) < 10 {
		return nil, fmt.Errorf("verdict reason too short to be meaningful")
	}
	if runes := []rune(verdict.Reason); len(runes) > 200 {
		verdict.Reason = string(runes[:200])
	}
	if len(verdict.MatchedSections) > 5 {
		verdict.MatchedSections = verdict.MatchedSections[:5]
	}

	if verdict.Confidence < 0 || verdict.Confidence > 100 {
		verdict.Confidence = 50
		verdict.Reason += " [confianza fuera de rango, normalizada]"
	}

	// Level/confidence consistency: an inconsistent pair means the model is
	// unsure, so the verdict drops one level instead of being trusted.
	if verdict.Level == LevelConfident && verdict.Confidence < 70 {
		verdict.Level = LevelPossible
		verdict.Reason += " [degradado: confianza insuficiente para CONFIDENT]"
	}
	if verdict.Level == LevelPossible && verdict.Confidence < 30 {
		verdict.Level = LevelRejected
		verdict.Reason += " [degradado: confianza insuficiente para POSSIBLE]"
	}

	return &verdict, nil
}

func (c *Classifier) rejectedFallback(reason string) *Verdict {
	return &Verdict{Level: LevelRejected, Reason: reason, Confidence: 0}
}

func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}
