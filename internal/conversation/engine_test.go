package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcareplus/clinic-assistant/internal/clinic"
	"github.com/healthcareplus/clinic-assistant/internal/sheets"
)

// scriptedLLM replays canned replies, or fails when Err is set.
type scriptedLLM struct {
	replies []string
	calls   int
	Err     error

	lastReq LLMRequest
}

func (s *scriptedLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.lastReq = req
	if s.Err != nil {
		return LLMResponse{}, s.Err
	}
	reply := s.replies[len(s.replies)-1]
	if s.calls < len(s.replies) {
		reply = s.replies[s.calls]
	}
	s.calls++
	return LLMResponse{Text: reply}, nil
}

// memorySessions is a minimal in-package SessionStore for engine tests.
type memorySessions struct {
	sessions map[string]*Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*Session)}
}

func (m *memorySessions) Load(_ context.Context, id string) (*Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	clone := *sess
	clone.History = append([]ChatMessage(nil), sess.History...)
	return &clone, nil
}

func (m *memorySessions) Save(_ context.Context, sess *Session) error {
	clone := *sess
	clone.History = append([]ChatMessage(nil), sess.History...)
	m.sessions[sess.ID] = &clone
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func engineClock() time.Time {
	return time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC) // Monday
}

func newTestEngine(llm LLMClient, store sheets.Store, sessions SessionStore) *Engine {
	return NewEngine(EngineConfig{
		LLM:          llm,
		Sessions:     sessions,
		Appointments: store,
		Clinic:       clinic.Default(),
		Model:        "test-model",
		MaxTokens:    1024,
		Temperature:  0.3,
		Now:          engineClock,
	})
}

const engineRecap = "You're all set!\n" +
	"Patient Name: Jane Doe\n" +
	"Doctor Name: Dr. Smith\n" +
	"Date: 10 November 2025\n" +
	"Time: 2:00 PM"

func TestChatPassesHistoryAndSystemPrompt(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Hello! May I know your name please?"}}
	engine := newTestEngine(llm, sheets.NewMemoryStore(), newMemorySessions())

	reply, err := engine.Chat(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "name")

	assert.Contains(t, llm.lastReq.System, "HealthCare Plus Clinic")
	require.Len(t, llm.lastReq.Messages, 1)
	assert.Equal(t, ChatRoleUser, llm.lastReq.Messages[0].Role)
	assert.Equal(t, "hi", llm.lastReq.Messages[0].Content)
	assert.Equal(t, "test-model", llm.lastReq.Model)
}

func TestChatAppendsHistoryInOrder(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"reply one", "reply two"}}
	sessions := newMemorySessions()
	engine := newTestEngine(llm, sheets.NewMemoryStore(), sessions)
	ctx := context.Background()

	_, err := engine.Chat(ctx, "s1", "first")
	require.NoError(t, err)
	_, err = engine.Chat(ctx, "s1", "second")
	require.NoError(t, err)

	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, sess.History, 4)
	assert.Equal(t, []ChatMessage{
		{Role: ChatRoleUser, Content: "first"},
		{Role: ChatRoleAssistant, Content: "reply one"},
		{Role: ChatRoleUser, Content: "second"},
		{Role: ChatRoleAssistant, Content: "reply two"},
	}, sess.History)

	// The second call saw the full prior history plus the new message.
	require.Len(t, llm.lastReq.Messages, 3)
}

func TestChatRecapPersistsAppointment(t *testing.T) {
	llm := &scriptedLLM{replies: []string{engineRecap}}
	store := sheets.NewMemoryStore()
	sessions := newMemorySessions()
	engine := newTestEngine(llm, store, sessions)
	ctx := context.Background()

	reply, err := engine.Chat(ctx, "s1", "confirm")
	require.NoError(t, err)
	assert.Contains(t, reply, "Patient Name: Jane Doe")

	rows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].PatientName)
	assert.Equal(t, "Dr. Smith", rows[0].Doctor)
	assert.Equal(t, "2025-11-10", rows[0].AppointmentDate)
	assert.Equal(t, "14:00", rows[0].AppointmentTime)

	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sess.Record.Confirmed)
	assert.True(t, sess.Record.Persisted)
	assert.Equal(t, StateDone, sess.State())
}

func TestChatDuplicateRecapDoesNotGrowStore(t *testing.T) {
	llm := &scriptedLLM{replies: []string{engineRecap, engineRecap}}
	store := sheets.NewMemoryStore()
	sessions := newMemorySessions()
	engine := newTestEngine(llm, store, sessions)
	ctx := context.Background()

	_, err := engine.Chat(ctx, "s1", "confirm")
	require.NoError(t, err)
	// A second recap in the same session is ignored: the record is
	// already persisted.
	_, err = engine.Chat(ctx, "s1", "confirm again")
	require.NoError(t, err)

	rows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// A different session producing the identical appointment is
	// suppressed by the store-level duplicate check.
	_, err = engine.Chat(ctx, "s2", "confirm")
	require.NoError(t, err)
	rows, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	sess2, err := sessions.Load(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, sess2.Record.Persisted)
}

func TestChatRejectedSlotBecomesClarification(t *testing.T) {
	recap := "Recap:\n" +
		"Patient Name: Jane Doe\n" +
		"Doctor Name: Dr. Smith\n" +
		"Date: 9 November 2025\n" + // a Sunday
		"Time: 11:00 AM"
	llm := &scriptedLLM{replies: []string{recap}}
	store := sheets.NewMemoryStore()
	sessions := newMemorySessions()
	engine := newTestEngine(llm, store, sessions)
	ctx := context.Background()

	reply, err := engine.Chat(ctx, "s1", "confirm")
	require.NoError(t, err)
	assert.Contains(t, reply, "closed on Sundays")

	rows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, sess.Record.Confirmed)
	assert.Empty(t, sess.Record.AppointmentDateRaw)
	assert.Equal(t, StateAskingDateTime, sess.State())
}

func TestChatFallsBackWhenLLMFails(t *testing.T) {
	llm := &scriptedLLM{Err: errors.New("upstream timeout")}
	sessions := newMemorySessions()
	engine := newTestEngine(llm, sheets.NewMemoryStore(), sessions)

	reply, err := engine.Chat(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Contains(t, reply, "May I know your name")
}

func TestChatFallbackConversationPersists(t *testing.T) {
	llm := &scriptedLLM{Err: errors.New("upstream down")}
	store := sheets.NewMemoryStore()
	sessions := newMemorySessions()
	engine := newTestEngine(llm, store, sessions)
	ctx := context.Background()

	for _, input := range []string{"hi", "Jane Doe", "general medicine", "10 November 2025 at 2:00 PM", "confirm"} {
		_, err := engine.Chat(ctx, "s1", input)
		require.NoError(t, err)
	}

	rows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane Doe", rows[0].PatientName)
	assert.Equal(t, "Dr. Smith", rows[0].Doctor)

	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateDone, sess.State())
}

func TestChatPersistenceFailureIsSoft(t *testing.T) {
	llm := &scriptedLLM{replies: []string{engineRecap}}
	store := sheets.NewMemoryStore()
	store.AppendErr = errors.New("sheets quota exceeded")
	sessions := newMemorySessions()
	engine := newTestEngine(llm, store, sessions)
	ctx := context.Background()

	// The user still gets the confirmation reply.
	reply, err := engine.Chat(ctx, "s1", "confirm")
	require.NoError(t, err)
	assert.Contains(t, reply, "Patient Name: Jane Doe")

	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sess.Record.Confirmed)
	assert.False(t, sess.Record.Persisted)
}

func TestChatSessionsAreIsolated(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Hello!"}}
	sessions := newMemorySessions()
	engine := newTestEngine(llm, sheets.NewMemoryStore(), sessions)
	ctx := context.Background()

	_, err := engine.Chat(ctx, "a", "hi from a")
	require.NoError(t, err)
	_, err = engine.Chat(ctx, "b", "hi from b")
	require.NoError(t, err)

	a, err := sessions.Load(ctx, "a")
	require.NoError(t, err)
	b, err := sessions.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "hi from a", a.History[0].Content)
	assert.Equal(t, "hi from b", b.History[0].Content)
}

func TestReset(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Hello!"}}
	sessions := newMemorySessions()
	engine := newTestEngine(llm, sheets.NewMemoryStore(), sessions)
	ctx := context.Background()

	_, err := engine.Chat(ctx, "s1", "hi")
	require.NoError(t, err)
	require.NoError(t, engine.Reset(ctx, "s1"))

	_, err = sessions.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
