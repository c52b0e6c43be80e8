package chat

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/saahil/toolcalling/assistants"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
	"github.com/saahil/toolcalling/tools"
)

var logger = xlog.NewPackageLogger("github.com/saahil/toolcalling", "chat")

// DefaultTurnTimeout bounds the three outbound round-trips of one turn.
const DefaultTurnTimeout = 2 * time.Minute

// Service runs the per-turn pipeline: agent loop, response filter,
// session append, history persistence.
type Service struct {
	assistant assistants.IAssistant
	filter    *Filter
	store     store.MessageStore
	session   *Session
	timeout   time.Duration
}

// NewService creates a chat Service for one session.
func NewService(assistant assistants.IAssistant, filter *Filter, st store.MessageStore, session *Session) *Service {
	return &Service{
		assistant: assistant,
		filter:    filter,
		store:     st,
		session:   session,
		timeout:   DefaultTurnTimeout,
	}
}

// WithTimeout sets the per-turn timeout.
func (s *Service) WithTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Session returns the service's conversation session.
func (s *Service) Session() *Session {
	return s.session
}

// Submit runs one user turn: the agent produces a raw answer (calling at
// most one tool), the filter rewrites it per the instruction, and the
// turn is appended to the session. The (query, filtered answer) pair is
// persisted so subsequent turns see it as context.
func (s *Service) Submit(ctx context.Context, query, filterInstruction string) (*Turn, error) {
	if query == "" {
		return nil, errors.New("empty query")
	}

	ctx = chatmodel.SetChatID(ctx, s.session.ChatID())
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.assistant.Call(ctx, query)
	if err != nil {
		return nil, errors.WithMessage(err, "agent call failed")
	}

	filtered, err := s.filter.Refine(ctx, result.Content, filterInstruction)
	if err != nil {
		return nil, errors.WithMessage(err, "response filter failed")
	}

	turn := Turn{
		ID:                chatmodel.NewChatID(),
		Query:             query,
		FilterInstruction: filterInstruction,
		RawAnswer:         result.Content,
		FilteredAnswer:    filtered,
		ToolTrace:         append([]tools.Result(nil), result.ToolTrace...),
		CreatedAt:         time.Now(),
	}
	s.session.Append(turn)

	if s.store != nil {
		err = s.store.Add(ctx,
			llms.MessageFromTextParts(llms.RoleHuman, query),
			llms.MessageFromTextParts(llms.RoleAI, filtered),
		)
		if err != nil {
			logger.ContextKV(ctx, xlog.ERROR,
				"status", "failed_to_store_history",
				"chat_id", s.session.ChatID(),
				"err", err.Error(),
			)
		}
	}

	return &turn, nil
}

// Reset clears the session and its stored history.
func (s *Service) Reset(ctx context.Context) error {
	s.session.Reset()
	if s.store == nil {
		return nil
	}
	ctx = chatmodel.SetChatID(ctx, s.session.ChatID())
	return s.store.Reset(ctx)
}
