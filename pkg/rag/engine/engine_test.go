package engine

import (
	"context"
	"testing"

	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/rag/response"
	"manual-assistant-be/pkg/rag/retriever"
	"manual-assistant-be/pkg/rag/router"
	"manual-assistant-be/pkg/rag/session"
	"manual-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearch serves both collections so one stub drives router and retriever.
type fakeSearch struct {
	candidates []store.Candidate
	evidence   []store.Evidence
}

func (f *fakeSearch) SearchLibrary(ctx context.Context, query string, topK int) ([]store.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeSearch) SearchContent(ctx context.Context, query, documentID string, topK int) ([]store.Evidence, error) {
	return f.evidence, nil
}

type fakeLLM struct {
	answer string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.answer, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.answer, nil
}

type testHarness struct {
	engine   *Engine
	sessions *session.Manager
	search   *fakeSearch
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	nop := logger.NewNop()
	search := &fakeSearch{}
	sessions := session.NewManager(session.NewStore(), nop)

	rt := router.NewRouter(search, nil, nil, router.DefaultThresholds(), 10, nop, nil)
	rv := retriever.NewRetriever(search, -4.0, 20, 8, nop)
	gen := response.NewGenerator(&fakeLLM{answer: "Según el manual, el procedimiento es..."}, nop)

	eng := NewEngine(
		Config{
			Affirmations:      []string{"si", "sí", "claro"},
			ExitCommands:      []string{"salir", "/limpiar"},
			MaxFailedAttempts: 3,
		},
		sessions, rt, rv, gen, nil, nil, nop,
	)
	return &testHarness{engine: eng, sessions: sessions, search: search}
}

func manualCandidate(score float64) store.Candidate {
	return store.Candidate{
		DocumentID:  "hash-sueldos",
		DisplayName: "Manual Sueldos 2024",
		RerankScore: score,
	}
}

func someEvidence() []store.Evidence {
	return []store.Evidence{
		{Text: "Las validaciones se configuran en Parámetros > Sueldos.", Page: 12, RerankScore: 2.0},
	}
}

func TestHighConfidenceAutoSelectsAndAnswers(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(3.1)}
	h.search.evidence = someEvidence()

	result, err := h.engine.HandleQuery(context.Background(), "s1", "cómo configuro las validaciones de sueldos", "")

	require.NoError(t, err)
	assert.Contains(t, result.SourceDocuments, "Manual Sueldos 2024")
	assert.NotEmpty(t, result.Text)

	sess := h.sessions.GetOrCreate("s1")
	assert.Equal(t, store.StateDeepReading, sess.State)
	require.NotNil(t, sess.ActiveDocument)
	assert.Equal(t, "hash-sueldos", sess.ActiveDocument.DocumentID)
}

func TestMediumConfidenceAsksForConfirmation(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(0.0)}
	h.search.evidence = someEvidence()

	result, err := h.engine.HandleQuery(context.Background(), "s1", "validaciones de sueldos", "")

	require.NoError(t, err)
	assert.Contains(t, result.Text, "Manual Sueldos 2024")

	sess := h.sessions.GetOrCreate("s1")
	assert.Equal(t, store.StateAwaitingConfirmation, sess.State)
	require.NotNil(t, sess.PendingCandidate)

	// "sí" promotes the held candidate and answers the original query.
	result, err = h.engine.HandleQuery(context.Background(), "s1", "sí", "")
	require.NoError(t, err)
	assert.Contains(t, result.SourceDocuments, "Manual Sueldos 2024")

	sess = h.sessions.GetOrCreate("s1")
	assert.Equal(t, store.StateDeepReading, sess.State)
	require.NotNil(t, sess.ActiveDocument)
	assert.Equal(t, "hash-sueldos", sess.ActiveDocument.DocumentID)
	assert.Nil(t, sess.PendingCandidate)
}

func TestDeclinedConfirmationSearchesAgain(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(0.0)}

	_, err := h.engine.HandleQuery(context.Background(), "s1", "validaciones", "")
	require.NoError(t, err)

	// A non-affirmation while awaiting confirmation is a fresh search.
	h.search.candidates = []store.Candidate{{
		DocumentID:  "hash-stock",
		DisplayName: "Manual Stock 2024",
		RerankScore: 3.0,
	}}
	h.search.evidence = someEvidence()

	result, err := h.engine.HandleQuery(context.Background(), "s1", "mejor busco ajustes de stock", "")
	require.NoError(t, err)
	assert.Contains(t, result.SourceDocuments, "Manual Stock 2024")
}

func TestNoMatchKeepsExploring(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(-5.0)}

	result, err := h.engine.HandleQuery(context.Background(), "s1", "algo inexistente", "")

	require.NoError(t, err)
	assert.Contains(t, result.Text, "No encontré manuales vigentes")

	sess := h.sessions.GetOrCreate("s1")
	assert.Equal(t, store.StateExploring, sess.State)
	assert.Equal(t, 1, sess.FailedAttempts)
}

func TestExitCommandResetsSession(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(3.1)}
	h.search.evidence = someEvidence()

	_, err := h.engine.HandleQuery(context.Background(), "s1", "validaciones de sueldos", "")
	require.NoError(t, err)
	require.Equal(t, store.StateDeepReading, h.sessions.GetOrCreate("s1").State)

	result, err := h.engine.HandleQuery(context.Background(), "s1", "salir", "")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Memoria reiniciada")

	sess := h.sessions.GetOrCreate("s1")
	assert.Equal(t, store.StateExploring, sess.State)
	assert.Nil(t, sess.ActiveDocument)
	assert.Equal(t, 0, sess.FailedAttempts)
}

func TestRepeatedFailuresSuggestRephrasing(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = nil

	var result *Result
	var err error
	for i := 0; i < 3; i++ {
		result, err = h.engine.HandleQuery(context.Background(), "s1", "consulta sin resultados", "")
		require.NoError(t, err)
	}

	assert.Contains(t, result.Text, "otras palabras")
	assert.Equal(t, 0, h.sessions.GetOrCreate("s1").FailedAttempts, "breaker must restart the counter")
}

func TestProfileCommandSwitchesAnswerStyle(t *testing.T) {
	h := newHarness(t)

	result, err := h.engine.HandleQuery(context.Background(), "s1", "/perfil sistemas", "")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "sistemas")
	assert.Equal(t, store.ProfileTechnical, h.sessions.GetOrCreate("s1").Profile)

	result, err = h.engine.HandleQuery(context.Background(), "s1", "/perfil otra-cosa", "")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "/perfil")
}

func TestEmptyEvidenceIsUserVisible(t *testing.T) {
	h := newHarness(t)
	h.search.candidates = []store.Candidate{manualCandidate(3.1)}
	h.search.evidence = nil

	result, err := h.engine.HandleQuery(context.Background(), "s1", "tema que el manual no cubre", "")

	require.NoError(t, err)
	assert.Contains(t, result.Text, "No encontré nada")
	assert.Contains(t, result.SourceDocuments, "Manual Sueldos 2024")
}

func TestCorruptDeepReadingStateReportsLostContext(t *testing.T) {
	h := newHarness(t)
	// Force the inconsistent state directly: deep reading with no document.
	h.sessions.Transition("s1", store.StateDeepReading, nil, nil)

	result, err := h.engine.HandleQuery(context.Background(), "s1", "cualquier consulta", "")

	require.NoError(t, err)
	assert.Contains(t, result.Text, "Perdí el contexto")
}
