package qanything

import (
	"strconv"
	"strings"
)

// ChatMessage is one completed conversational turn. Turns are immutable once
// appended to a History; the caller appends them after a stream completes.
type ChatMessage struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// History is an ordered sequence of completed turns, sent with each chat
// request so the remote service can resolve follow-up questions. The client
// keeps no cross-request state: callers own their history.
type History []ChatMessage

// Append records a completed turn. Turns with an empty response (in-flight or
// failed) are dropped, so a History only ever contains successful turns.
func (h History) Append(question, response string) History {
	if response == "" {
		return h
	}
	return append(h, ChatMessage{Question: question, Response: response})
}

// Completed returns the turns eligible to be sent as request history:
// those whose response is a non-empty string.
func (h History) Completed() History {
	out := make(History, 0, len(h))
	for _, m := range h {
		if m.Response != "" {
			out = append(out, m)
		}
	}
	return out
}

// ChatSettings carries the UI-level chat configuration shared by
// knowledge-base requests. Native Go types here; the request builders convert
// to the string-typed wire fields.
type ChatSettings struct {
	// Model is the chat model identifier (see ModelCatalog for known models).
	Model string

	// MaxToken caps the response length. Sent as a string on the wire.
	MaxToken int

	// Prompt is an optional custom system prompt.
	Prompt string

	// HybridSearch enables combined vector + keyword retrieval.
	HybridSearch bool

	// Networking allows the remote service to consult the web.
	Networking bool

	// SourceNeeded requests source attributions alongside the answer.
	SourceNeeded bool
}

// KnowledgeBaseChatRequest is the body for POST /chat_stream.
// All flag fields are string-typed on the wire ("true"/"false").
type KnowledgeBaseChatRequest struct {
	Question     string     `json:"question"`
	KBIDs        []string   `json:"kbIds"`
	Prompt       string     `json:"prompt,omitempty"`
	History      History    `json:"history,omitempty"`
	Model        string     `json:"model"`
	MaxToken     string     `json:"maxToken"`
	HybridSearch StringBool `json:"hybridSearch"`
	Networking   StringBool `json:"networking"`
	SourceNeeded StringBool `json:"sourceNeeded"`
}

// Validate checks the request preconditions. Violations are reported before
// any network call is made.
func (r *KnowledgeBaseChatRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return &ValidationError{
			Field:  "question",
			Value:  r.Question,
			Reason: "question must not be empty",
			Err:    ErrInvalidRequest,
		}
	}
	if len(r.KBIDs) == 0 {
		return &ValidationError{
			Field:  "kbIds",
			Value:  r.KBIDs,
			Reason: "knowledge-base chat requires at least one kbId",
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

// AgentChatRequest is the body for POST /bot/chat_stream.
type AgentChatRequest struct {
	UUID         string     `json:"uuid"`
	Question     string     `json:"question"`
	SourceNeeded StringBool `json:"sourceNeeded"`
	History      History    `json:"history,omitempty"`
}

// Validate checks the request preconditions. Violations are reported before
// any network call is made.
func (r *AgentChatRequest) Validate() error {
	if r.UUID == "" {
		return &ValidationError{
			Field:  "uuid",
			Value:  r.UUID,
			Reason: "agent chat requires the agent uuid",
			Err:    ErrInvalidRequest,
		}
	}
	if strings.TrimSpace(r.Question) == "" {
		return &ValidationError{
			Field:  "question",
			Value:  r.Question,
			Reason: "question must not be empty",
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

// NewKnowledgeBaseChatRequest builds and validates a knowledge-base chat
// request from UI-level settings. Only completed history turns are included.
func NewKnowledgeBaseChatRequest(question string, kbIDs []string, settings ChatSettings, history History) (*KnowledgeBaseChatRequest, error) {
	req := &KnowledgeBaseChatRequest{
		Question:     question,
		KBIDs:        kbIDs,
		Prompt:       settings.Prompt,
		History:      history.Completed(),
		Model:        settings.Model,
		MaxToken:     strconv.Itoa(settings.MaxToken),
		HybridSearch: StringBool(settings.HybridSearch),
		Networking:   StringBool(settings.Networking),
		SourceNeeded: StringBool(settings.SourceNeeded),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// NewAgentChatRequest builds and validates an agent chat request.
// Only completed history turns are included.
func NewAgentChatRequest(agentUUID, question string, sourceNeeded bool, history History) (*AgentChatRequest, error) {
	req := &AgentChatRequest{
		UUID:         agentUUID,
		Question:     question,
		SourceNeeded: StringBool(sourceNeeded),
		History:      history.Completed(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
