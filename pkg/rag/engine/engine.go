package engine

import (
	"context"
	"strings"
	"time"

	"manual-assistant-be/internal/constant"
	"manual-assistant-be/internal/pkg/logger"
	"manual-assistant-be/pkg/llm"
	"manual-assistant-be/pkg/rag/response"
	"manual-assistant-be/pkg/rag/retriever"
	"manual-assistant-be/pkg/rag/router"
	"manual-assistant-be/pkg/rag/session"
	"manual-assistant-be/pkg/store"
)

// Config holds the engine's conversational knobs. Vocabularies are word sets
// compared against the normalized message, not substrings.
type Config struct {
	Affirmations      []string
	ExitCommands      []string
	MaxFailedAttempts int
	CollaboratorWait  time.Duration
	HistoryDepth      int
}

// Result is the engine's answer to one message.
type Result struct {
	Text            string   `json:"text"`
	SourceDocuments []string `json:"source_documents"`
}

// History persists and recalls conversation turns. Implementations live in
// the service layer; failures here never fail a query.
type History interface {
	Append(ctx context.Context, sessionID, role, content string) error
	Recent(ctx context.Context, sessionID string, n int) ([]llm.Message, error)
}

// Engine is the conversational entry point: it serializes per-session
// handling, interprets commands, and dispatches each message through the
// session state machine into discovery or deep reading.
type Engine struct {
	cfg       Config
	sessions  *session.Manager
	router    *router.Router
	retriever *retriever.Retriever
	generator *response.Generator
	history   History
	vision    llm.VisionDescriber
	logger    logger.ILogger
}

// NewEngine builds the engine. history and vision may be nil; the engine
// then runs without memory of past turns and ignores image references.
func NewEngine(
	cfg Config,
	sessions *session.Manager,
	rt *router.Router,
	rv *retriever.Retriever,
	gen *response.Generator,
	history History,
	vision llm.VisionDescriber,
	log logger.ILogger,
) *Engine {
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = 6
	}
	return &Engine{
		cfg:       cfg,
		sessions:  sessions,
		router:    rt,
		retriever: rv,
		generator: gen,
		history:   history,
		vision:    vision,
		logger:    log,
	}
}

// HandleQuery processes one user message. Concurrent messages for the same
// session queue behind a per-session lock and are handled in arrival order.
func (e *Engine) HandleQuery(ctx context.Context, sessionID, query, imageRef string) (*Result, error) {
	unlock := e.sessions.Lock(sessionID)
	defer unlock()

	if e.cfg.CollaboratorWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.CollaboratorWait)
		defer cancel()
	}

	query = strings.TrimSpace(query)
	if query == "" && imageRef == "" {
		return &Result{Text: response.ProfileUsage()}, nil
	}

	if result := e.handleCommand(sessionID, query); result != nil {
		return result, nil
	}

	query = e.augmentWithImage(ctx, query, imageRef)

	e.appendHistory(ctx, sessionID, constant.ChatMessageRoleUser, query)

	result := e.dispatch(ctx, sessionID, query)

	e.appendHistory(ctx, sessionID, constant.ChatMessageRoleAssistant, result.Text)
	return result, nil
}

// handleCommand resolves exit and profile commands before any routing.
// Returns nil when the message is a regular query.
func (e *Engine) handleCommand(sessionID, query string) *Result {
	normalized := normalize(query)

	for _, cmd := range e.cfg.ExitCommands {
		if normalized == normalize(cmd) {
			e.sessions.Reset(sessionID)
			return &Result{Text: response.SessionReset()}
		}
	}

	if strings.HasPrefix(normalized, "/perfil") {
		arg := strings.TrimSpace(strings.TrimPrefix(normalized, "/perfil"))
		var profile string
		switch arg {
		case "sistemas", "tecnico", "técnico":
			profile = store.ProfileTechnical
		case "admin", "administracion", "administración":
			profile = store.ProfileAdmin
		default:
			return &Result{Text: response.ProfileUsage()}
		}
		e.sessions.MergeMetadata(sessionID, session.Metadata{Profile: profile})
		return &Result{Text: response.ProfileChanged(profile)}
	}

	return nil
}

// augmentWithImage appends a technical description of an attached screenshot
// to the query. Vision failures degrade to the plain text query.
func (e *Engine) augmentWithImage(ctx context.Context, query, imageRef string) string {
	if imageRef == "" || e.vision == nil {
		return query
	}

	description, err := e.vision.DescribeImage(ctx, imageRef, constant.ImageDescriptionPrompt)
	if err != nil {
		e.logger.Warn("ENGINE", "Image description failed, continuing with text only", map[string]interface{}{
			"image": imageRef,
			"error": err.Error(),
		})
		return query
	}
	if query == "" {
		return description
	}
	return query + "\n[Contexto de la captura adjunta]: " + description
}

// dispatch walks the state machine. A declined confirmation re-enters
// exploration within the same loop iteration; there is no recursive re-entry
// through HandleQuery.
func (e *Engine) dispatch(ctx context.Context, sessionID, query string) *Result {
	for {
		sess := e.sessions.GetOrCreate(sessionID)

		switch sess.State {
		case store.StateExploring:
			return e.handleExploring(ctx, sessionID, query)

		case store.StateAwaitingConfirmation:
			if sess.PendingCandidate == nil {
				e.logger.Error("ENGINE", "Awaiting confirmation without pending candidate", map[string]interface{}{
					"session_id": sessionID,
				})
				e.sessions.Transition(sessionID, store.StateExploring, nil, nil)
				continue
			}
			if e.isAffirmation(query) {
				return e.confirmPending(ctx, sessionID, sess)
			}
			// Anything else is a fresh search with the new message.
			e.sessions.Transition(sessionID, store.StateExploring, nil, nil)
			continue

		case store.StateDeepReading:
			if sess.ActiveDocument == nil {
				e.logger.Error("ENGINE", "Deep reading without active document", map[string]interface{}{
					"session_id": sessionID,
				})
				return &Result{Text: response.LostContext()}
			}
			return e.answerFromDocument(ctx, sessionID, sess, query)

		default:
			e.logger.Error("ENGINE", "Unknown session state, resetting", map[string]interface{}{
				"session_id": sessionID,
				"state":      sess.State,
			})
			e.sessions.Reset(sessionID)
			return &Result{Text: response.SessionReset()}
		}
	}
}

func (e *Engine) handleExploring(ctx context.Context, sessionID, query string) *Result {
	e.sessions.MergeMetadata(sessionID, session.Metadata{LastQuery: query})

	outcome := e.router.Discover(ctx, query)

	switch outcome.Kind {
	case router.OutcomeAutoSelect:
		e.sessions.Transition(sessionID, store.StateDeepReading, outcome.Candidate, nil)
		sess := e.sessions.GetOrCreate(sessionID)
		return e.answerFromDocument(ctx, sessionID, sess, query)

	case router.OutcomeConfirm:
		e.sessions.Transition(sessionID, store.StateAwaitingConfirmation, nil, outcome.Candidate)
		return &Result{Text: response.ConfirmCandidate(outcome.Candidate)}

	case router.OutcomeAmbiguous:
		text := response.AmbiguousCandidates(outcome.Alternatives)
		return &Result{Text: e.withFailure(sessionID, text)}

	default:
		return &Result{Text: e.withFailure(sessionID, response.NoMatch())}
	}
}

// confirmPending promotes the pending candidate to active document and
// answers the query that started the confirmation exchange.
func (e *Engine) confirmPending(ctx context.Context, sessionID string, sess *store.Session) *Result {
	candidate := sess.PendingCandidate
	originalQuery := sess.LastQuery

	e.sessions.Transition(sessionID, store.StateDeepReading, candidate, nil)

	if originalQuery == "" {
		return &Result{
			Text:            response.DocumentOpened(candidate),
			SourceDocuments: []string{candidate.DisplayName},
		}
	}

	sess = e.sessions.GetOrCreate(sessionID)
	return e.answerFromDocument(ctx, sessionID, sess, originalQuery)
}

func (e *Engine) answerFromDocument(ctx context.Context, sessionID string, sess *store.Session, query string) *Result {
	document := sess.ActiveDocument
	evidence := e.retriever.Retrieve(ctx, query, document.DocumentID)

	if len(evidence) == 0 {
		return &Result{
			Text:            response.NothingInDocument(document.DisplayName),
			SourceDocuments: []string{document.DisplayName},
		}
	}

	history := e.recentHistory(ctx, sessionID)
	answer := e.generator.GenerateAnswer(ctx, query, document, evidence, sess.Profile, history)

	return &Result{
		Text:            answer,
		SourceDocuments: []string{document.DisplayName},
	}
}

// withFailure counts a failed discovery. After too many in a row the reply
// suggests rephrasing and the counter restarts.
func (e *Engine) withFailure(sessionID, text string) string {
	count := e.sessions.RecordFailure(sessionID)
	if count >= e.cfg.MaxFailedAttempts {
		e.sessions.Transition(sessionID, store.StateExploring, nil, nil)
		return text + "\n\n" + response.SuggestRephrase()
	}
	return text
}

func (e *Engine) isAffirmation(query string) bool {
	normalized := normalize(query)
	for _, word := range e.cfg.Affirmations {
		if normalized == normalize(word) {
			return true
		}
	}
	return false
}

func (e *Engine) appendHistory(ctx context.Context, sessionID, role, content string) {
	if e.history == nil {
		return
	}
	if err := e.history.Append(ctx, sessionID, role, content); err != nil {
		e.logger.Warn("ENGINE", "History append failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

func (e *Engine) recentHistory(ctx context.Context, sessionID string) []llm.Message {
	if e.history == nil {
		return nil
	}
	messages, err := e.history.Recent(ctx, sessionID, e.cfg.HistoryDepth)
	if err != nil {
		e.logger.Warn("ENGINE", "History load failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil
	}
	return messages
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, "¡!¿?.,;: ")
}
