package classifier

import (
	"context"
	"errors"
	"testing"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/extractor"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func structuredSummary() *extractor.StructuralSummary {
	return &extractor.StructuralSummary{
		Title:       "Manual de Facturación",
		Outline:     []string{"Introducción", "Anulación de comprobantes"},
		KeyHeadings: []string{"ANULACION DE FACTURAS"},
	}
}

func TestClassifyEmptyOutlineRejectsWithoutLLM(t *testing.T) {
	fake := &fakeLLM{response: `{"level":"CONFIDENT","reason":"should never be used","confidence":95}`}
	c := NewClassifier(fake, logger.NewNop())

	verdict, err := c.Classify(context.Background(), "anular factura", "Manual", &extractor.StructuralSummary{})

	require.NoError(t, err)
	assert.Equal(t, LevelRejected, verdict.Level)
	assert.Equal(t, 0, verdict.Confidence)
	assert.Zero(t, fake.calls, "LLM must not be invoked without structural signal")
}

func TestClassifyParsesValidVerdict(t *testing.T) {
	fake := &fakeLLM{response: `Claro, aquí está:
{"level":"CONFIDENT","reason":"El índice contiene la sección de anulación.","matched_sections":["Anulación de comprobantes"],"confidence":90}`}
	c := NewClassifier(fake, logger.NewNop())

	verdict, err := c.Classify(context.Background(), "anular factura", "Manual", structuredSummary())

	require.NoError(t, err)
	assert.Equal(t, LevelConfident, verdict.Level)
	assert.Equal(t, 90, verdict.Confidence)
	assert.Equal(t, []string{"Anulación de comprobantes"}, verdict.MatchedSections)
}

func TestClassifyRejectsOnLLMError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("model overloaded")}
	c := NewClassifier(fake, logger.NewNop())

	verdict, err := c.Classify(context.Background(), "consulta", "Manual", structuredSummary())

	require.NoError(t, err)
	assert.Equal(t, LevelRejected, verdict.Level)
}

func TestClassifyStrictParsing(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json at all", "No puedo evaluar este documento."},
		{"unknown level", `{"level":"MAYBE","reason":"una razón suficientemente larga","confidence":50}`},
		{"reason too short", `{"level":"POSSIBLE","reason":"ok","confidence":50}`},
		{"unknown field", `{"level":"POSSIBLE","reason":"una razón suficientemente larga","confidence":50,"extra":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeLLM{response: tt.response}, logger.NewNop())
			verdict, err := c.Classify(context.Background(), "consulta", "Manual", structuredSummary())

			require.NoError(t, err)
			assert.Equal(t, LevelRejected, verdict.Level, "malformed verdicts must degrade to rejection")
		})
	}
}

func TestClassifyConfidenceClampAndDowngrades(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		expectedLevel string
		expectedConf  int
	}{
		{
			"out of range confidence normalized",
			`{"level":"POSSIBLE","reason":"una razón suficientemente larga","confidence":150}`,
			LevelPossible, 50,
		},
		{
			"confident below 70 downgraded",
			`{"level":"CONFIDENT","reason":"una razón suficientemente larga","confidence":55}`,
			LevelPossible, 55,
		},
		{
			"possible below 30 downgraded",
			`{"level":"POSSIBLE","reason":"una razón suficientemente larga","confidence":10}`,
			LevelRejected, 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeLLM{response: tt.response}, logger.NewNop())
			verdict, err := c.Classify(context.Background(), "consulta", "Manual", structuredSummary())

			require.NoError(t, err)
			assert.Equal(t, tt.expectedLevel, verdict.Level)
			assert.Equal(t, tt.expectedConf, verdict.Confidence)
		})
	}
}

func TestClassifyCandidatesPartitionsAndCaps(t *testing.T) {
	fake := &fakeLLM{response: `{"level":"POSSIBLE","reason":"una razón suficientemente larga","confidence":50}`}
	c := NewClassifier(fake, logger.NewNop())

	candidates := []store.Candidate{
		{DocumentID: "a"}, {DocumentID: "b"}, {DocumentID: "c"}, {DocumentID: "d"},
	}
	summaries := map[string]*extractor.StructuralSummary{
		"a": structuredSummary(),
		"b": structuredSummary(),
		"c": structuredSummary(),
		"d": structuredSummary(),
	}

	buckets := c.ClassifyCandidates(context.Background(), "consulta", candidates, summaries)

	assert.Len(t, buckets.Possible, 3, "batch must cap at three documents")
	assert.Empty(t, buckets.Confident)
	assert.Empty(t, buckets.Rejected)
	assert.Equal(t, 3, fake.calls)
}
