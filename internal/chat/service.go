package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"taskchatgo/internal/config"
	"taskchatgo/internal/models"
)

const (
	responseHistoryLimit = 50

	unavailableMessage = "Chat service is not configured. Please set a provider API key."
	emptyReplyFallback = "I'm sorry, I couldn't come up with a response."
)

// ChatResult is the outcome of one processed chat turn.
type ChatResult struct {
	Response   string                `json:"response"`
	TaskResult *Result               `json:"task_result,omitempty"`
	Messages   []*models.ChatMessage `json:"messages"`
}

// Service orchestrates one chat turn end to end: persist the user turn,
// assemble context, let the model pick a function, dispatch it, ask the
// model for a grounded confirmation, persist the assistant turn.
type Service struct {
	store      *Store
	dispatcher *Dispatcher
	base       model.ToolCallingChatModel
	withTools  model.ToolCallingChatModel

	historyWindow int
	genOpts       []model.Option
}

// NewService wires the orchestrator. chatModel may be nil, in which case
// every chat request answers with the fixed unavailability message and
// persists nothing.
func NewService(store *Store, tasks TaskService, chatModel model.ToolCallingChatModel, cfg config.ChatConfig) (*Service, error) {
	s := &Service{
		store:         store,
		dispatcher:    NewDispatcher(tasks),
		base:          chatModel,
		historyWindow: cfg.HistoryWindow,
	}
	if s.historyWindow <= 0 {
		s.historyWindow = 10
	}
	if cfg.MaxTokens > 0 {
		s.genOpts = append(s.genOpts, model.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature > 0 {
		s.genOpts = append(s.genOpts, model.WithTemperature(cfg.Temperature))
	}
	if chatModel != nil {
		withTools, err := chatModel.WithTools(taskCatalog())
		if err != nil {
			return nil, fmt.Errorf("bind task tools: %w", err)
		}
		s.withTools = withTools
	}
	return s, nil
}

// ProcessMessage runs the full conversation flow for one user turn. Errors
// returned from here are persistence failures; model and dispatch failures
// fold into the assistant's reply instead.
func (s *Service) ProcessMessage(ctx context.Context, userID uuid.UUID, message string) (*ChatResult, error) {
	if s.base == nil {
		return &ChatResult{
			Response: unavailableMessage,
			Messages: []*models.ChatMessage{},
		}, nil
	}

	if _, err := s.store.Append(ctx, userID, models.RoleUser, message, nil); err != nil {
		return nil, err
	}

	history, err := s.store.Recent(ctx, userID, s.historyWindow)
	if err != nil {
		return nil, err
	}
	messages := buildContext(history, message)

	first, err := s.withTools.Generate(ctx, messages, s.genOpts...)
	if err != nil {
		return s.errorReply(ctx, userID, err)
	}

	content := first.Content
	var (
		taskResult *Result
		metadata   map[string]any
	)
	if len(first.ToolCalls) > 0 {
		// Single-action policy: only the first proposed call is honored.
		call := first.ToolCalls[0]
		taskResult = s.dispatcher.Dispatch(ctx, userID, call.Function.Name, call.Function.Arguments)

		encoded, err := sonic.MarshalString(taskResult)
		if err != nil {
			return s.errorReply(ctx, userID, err)
		}
		messages = append(messages, first, schema.ToolMessage(encoded, call.ID))

		// Tool-free second call: a natural-language confirmation grounded
		// in the function result.
		second, err := s.base.Generate(ctx, messages, s.genOpts...)
		if err != nil {
			return s.errorReply(ctx, userID, err)
		}
		content = second.Content
		metadata = map[string]any{"function_call": call.Function.Name}
	}

	if strings.TrimSpace(content) == "" {
		content = emptyReplyFallback
	}
	if _, err := s.store.Append(ctx, userID, models.RoleAssistant, content, metadata); err != nil {
		return nil, err
	}

	updated, err := s.store.Recent(ctx, userID, responseHistoryLimit)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Response: content, TaskResult: taskResult, Messages: updated}, nil
}

// History returns up to limit recent messages, oldest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	return s.store.Recent(ctx, userID, limit)
}

// ClearHistory deletes the user's conversation and reports the row count.
func (s *Service) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.Clear(ctx, userID)
}

// errorReply collapses the rest of the flow into a synthetic assistant
// message. The user's own turn stays persisted.
func (s *Service) errorReply(ctx context.Context, userID uuid.UUID, cause error) (*ChatResult, error) {
	log.Printf("process message for user %s: %v", userID, cause)
	content := fmt.Sprintf("I encountered an error: %s", cause.Error())
	if _, err := s.store.Append(ctx, userID, models.RoleAssistant, content, nil); err != nil {
		return nil, err
	}
	updated, err := s.store.Recent(ctx, userID, responseHistoryLimit)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Response: content, Messages: updated}, nil
}
