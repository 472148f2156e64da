package qanything

import (
	"context"
	"net/url"
	"strconv"
)

// MaxAgentBindings is the remote service's cap on knowledge bases bound to
// one agent, enforced client-side before calling.
const MaxAgentBindings = 100

// CreateAgentRequest is the body for POST /bot/create. Flag fields are
// string-typed on the wire, like the chat requests.
type CreateAgentRequest struct {
	KBIDs          []string   `json:"kbIds"`
	BotName        string     `json:"botName"`
	BotDescription string     `json:"botDescription"`
	Model          string     `json:"model"`
	MaxToken       string     `json:"maxToken"`
	HybridSearch   StringBool `json:"hybridSearch"`
	Networking     StringBool `json:"networking"`
	NeedSource     StringBool `json:"needSource"`
	PromptSetting  string     `json:"botPromptSetting,omitempty"`
	WelcomeMessage string     `json:"welcomeMessage,omitempty"`
}

// NewCreateAgentRequest builds a creation request from UI-level settings.
func NewCreateAgentRequest(name, description string, kbIDs []string, settings ChatSettings) *CreateAgentRequest {
	return &CreateAgentRequest{
		KBIDs:          kbIDs,
		BotName:        name,
		BotDescription: description,
		Model:          settings.Model,
		MaxToken:       strconv.Itoa(settings.MaxToken),
		HybridSearch:   StringBool(settings.HybridSearch),
		Networking:     StringBool(settings.Networking),
		NeedSource:     StringBool(settings.SourceNeeded),
		PromptSetting:  settings.Prompt,
	}
}

// Validate checks the request preconditions.
func (r *CreateAgentRequest) Validate() error {
	if r.BotName == "" {
		return &ValidationError{
			Field:  "botName",
			Value:  r.BotName,
			Reason: "agent name must not be empty",
			Err:    ErrInvalidRequest,
		}
	}
	if len(r.KBIDs) > MaxAgentBindings {
		return &ValidationError{
			Field:  "kbIds",
			Value:  len(r.KBIDs),
			Reason: "an agent may be bound to at most 100 knowledge bases",
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

// UpdateAgentRequest is the body for POST /bot/update. Zero-valued fields
// are omitted, leaving the remote configuration unchanged.
type UpdateAgentRequest struct {
	UUID           string `json:"uuid"`
	BotName        string `json:"botName,omitempty"`
	BotDescription string `json:"botDescription,omitempty"`
	Model          string `json:"model,omitempty"`
	MaxToken       string `json:"maxToken,omitempty"`
	HybridSearch   string `json:"hybridSearch,omitempty"`
	Networking     string `json:"networking,omitempty"`
	NeedSource     string `json:"needSource,omitempty"`
	PromptSetting  string `json:"botPromptSetting,omitempty"`
	WelcomeMessage string `json:"welcomeMessage,omitempty"`
}

// CreateAgent creates an agent and returns its configuration, including the
// assigned uuid.
func (c *Client) CreateAgent(ctx context.Context, req *CreateAgentRequest) (*Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var agent Agent
	if err := c.postJSON(ctx, "/bot/create", req, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent applies a partial update to an agent's configuration.
func (c *Client) UpdateAgent(ctx context.Context, req *UpdateAgentRequest) error {
	if req.UUID == "" {
		return &ValidationError{
			Field:  "uuid",
			Value:  req.UUID,
			Reason: "agent update requires the agent uuid",
			Err:    ErrInvalidRequest,
		}
	}
	return c.postJSON(ctx, "/bot/update", req, nil)
}

// DeleteAgent removes an agent. Bound knowledge bases are unaffected.
func (c *Client) DeleteAgent(ctx context.Context, agentUUID string) error {
	req := struct {
		UUID string `json:"uuid"`
	}{UUID: agentUUID}
	return c.postJSON(ctx, "/bot/delete", req, nil)
}

// ListAgents returns all agents on the account.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := c.getJSON(ctx, "/bot/list", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent fetches one agent's configuration by uuid.
func (c *Client) GetAgent(ctx context.Context, agentUUID string) (*Agent, error) {
	var agent Agent
	query := url.Values{"uuid": {agentUUID}}
	if err := c.getJSON(ctx, "/bot/detail", query, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// BindKnowledgeBases attaches knowledge bases to an agent. The 100-binding
// cap is enforced before calling.
func (c *Client) BindKnowledgeBases(ctx context.Context, agentUUID string, kbIDs []string) error {
	if len(kbIDs) == 0 {
		return &ValidationError{
			Field:  "kbIds",
			Value:  kbIDs,
			Reason: "bind requires at least one kbId",
			Err:    ErrInvalidRequest,
		}
	}
	if len(kbIDs) > MaxAgentBindings {
		return &ValidationError{
			Field:  "kbIds",
			Value:  len(kbIDs),
			Reason: "an agent may be bound to at most 100 knowledge bases",
			Err:    ErrInvalidRequest,
		}
	}

	req := struct {
		UUID  string   `json:"uuid"`
		KBIDs []string `json:"kbIds"`
	}{UUID: agentUUID, KBIDs: kbIDs}
	return c.postJSON(ctx, "/bot/bindKbs", req, nil)
}

// UnbindKnowledgeBases detaches knowledge bases from an agent.
func (c *Client) UnbindKnowledgeBases(ctx context.Context, agentUUID string, kbIDs []string) error {
	req := struct {
		UUID  string   `json:"uuid"`
		KBIDs []string `json:"kbIds"`
	}{UUID: agentUUID, KBIDs: kbIDs}
	return c.postJSON(ctx, "/bot/unbindKbs", req, nil)
}
