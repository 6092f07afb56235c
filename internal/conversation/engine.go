package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthcareplus/clinic-assistant/internal/clinic"
	"github.com/healthcareplus/clinic-assistant/internal/observability/metrics"
	"github.com/healthcareplus/clinic-assistant/internal/schedule"
	"github.com/healthcareplus/clinic-assistant/internal/sheets"
	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

// EngineConfig wires the engine's collaborators and model parameters.
type EngineConfig struct {
	LLM          LLMClient
	Sessions     SessionStore
	Appointments sheets.Store
	Clinic       *clinic.Details
	Logger       *logging.Logger
	Metrics      *metrics.ChatMetrics

	Model       string
	MaxTokens   int32
	Temperature float32
	LLMTimeout  time.Duration

	// Now injects the clock; nil means wall clock.
	Now func() time.Time
}

// Engine runs one conversation turn at a time: LLM call (with the
// rule-based responder as the degraded path), confirmation extraction,
// slot validation, and persistence handoff.
type Engine struct {
	llm          LLMClient
	sessions     SessionStore
	appointments sheets.Store
	clinic       *clinic.Details
	fallback     *FallbackResponder
	logger       *logging.Logger
	metrics      *metrics.ChatMetrics

	systemPrompt string
	model        string
	maxTokens    int32
	temperature  float32
	llmTimeout   time.Duration
	now          func() time.Time
}

// NewEngine creates the dialogue engine.
func NewEngine(cfg EngineConfig) *Engine {
	details := cfg.Clinic
	if details == nil {
		details = clinic.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Engine{
		llm:          cfg.LLM,
		sessions:     cfg.Sessions,
		appointments: cfg.Appointments,
		clinic:       details,
		fallback:     NewFallbackResponder(details, now),
		logger:       logger,
		metrics:      cfg.Metrics,
		systemPrompt: details.SystemPrompt(),
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		llmTimeout:   timeout,
		now:          now,
	}
}

// Chat processes one user message for the given session and returns the
// assistant reply. The session is created on first use.
func (e *Engine) Chat(ctx context.Context, sessionID, message string) (string, error) {
	start := e.now()

	sess, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return "", fmt.Errorf("conversation: load session: %w", err)
		}
		sess = &Session{ID: sessionID}
	}

	sess.History = append(sess.History, ChatMessage{Role: ChatRoleUser, Content: message})

	outcome := "llm"
	reply, llmErr := e.complete(ctx, sess)
	if llmErr != nil {
		e.logger.Warn("LLM unavailable, using rule-based responder",
			"session_id", sessionID,
			"error", llmErr.Error(),
		)
		e.metrics.ObserveLLMFailure()
		e.metrics.ObserveFallbackTurn()
		outcome = "fallback"
		reply = e.fallback.Respond(sess, message)
	} else if !sess.Record.Persisted {
		reply = e.processReply(sess, reply)
	}

	if sess.Record.Confirmed && !sess.Record.Persisted {
		e.persist(ctx, sess)
	}

	sess.History = append(sess.History, ChatMessage{Role: ChatRoleAssistant, Content: reply})
	if err := e.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("conversation: save session: %w", err)
	}

	e.metrics.ObserveTurn(outcome, e.now().Sub(start).Seconds())
	e.logger.Info("chat turn completed",
		"session_id", sessionID,
		"state", string(sess.State()),
		"outcome", outcome,
	)
	return reply, nil
}

// complete sends the full history to the LLM under the configured
// timeout.
func (e *Engine) complete(ctx context.Context, sess *Session) (string, error) {
	if e.llm == nil {
		return "", errors.New("no LLM client configured")
	}

	llmCtx, cancel := context.WithTimeout(ctx, e.llmTimeout)
	defer cancel()

	resp, err := e.llm.Complete(llmCtx, LLMRequest{
		Model:       e.model,
		System:      e.systemPrompt,
		Messages:    sess.History,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// processReply runs confirmation extraction over the assistant reply and,
// when the record is complete, validates the slot. A rejected slot clears
// the date/time so the conversation re-asks; the rejection message is
// relayed as a clarification, never a hard failure.
func (e *Engine) processReply(sess *Session, reply string) string {
	fields, ok := ExtractConfirmation(reply)
	if !ok {
		return reply
	}

	rec := &sess.Record
	rec.Merge(fields)

	if !rec.FieldsComplete() {
		return reply
	}

	conf, err := schedule.ValidateSlot(rec.AppointmentDateRaw, rec.AppointmentTimeRaw, e.now())
	if err != nil {
		rec.AppointmentDateRaw = ""
		rec.AppointmentDate = ""
		rec.AppointmentTimeRaw = ""
		rec.AppointmentTime = ""

		var rej *schedule.Rejection
		if errors.As(err, &rej) {
			return reply + "\n\nOne moment: " + rej.Message + " Could you choose another date and time?"
		}
		return reply + "\n\nOne moment: I couldn't validate that date and time. Could you choose another slot?"
	}

	rec.AppointmentDate = conf.Date
	rec.AppointmentTime = conf.Time
	rec.Confirmed = true
	return reply
}

// persist hands the confirmed record to the appointment store with
// duplicate suppression. Failure is soft: the user keeps the
// confirmation, the error is logged and counted, and the record stays
// unpersisted so a later turn may retry.
func (e *Engine) persist(ctx context.Context, sess *Session) {
	rec := &sess.Record
	row := sheets.Row{
		Timestamp:       e.now(),
		PatientName:     rec.PatientName,
		Doctor:          rec.RecommendedDoctor,
		AppointmentDate: rec.AppointmentDate,
		AppointmentTime: rec.AppointmentTime,
	}

	duplicate, err := sheets.AppendUnique(ctx, e.appointments, row)
	if err != nil {
		e.logger.Error("failed to persist appointment",
			"session_id", sess.ID,
			"error", err.Error(),
		)
		e.metrics.ObserveAppointment("failed")
		return
	}

	rec.Persisted = true
	if duplicate {
		e.metrics.ObserveAppointment("duplicate")
		return
	}
	e.metrics.ObserveAppointment("saved")
}

// Reset discards the session's record and history.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("conversation: reset session: %w", err)
	}
	return nil
}
