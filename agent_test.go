package qanything

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAgentLifecycle(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	kbID, err := client.CreateKnowledgeBase(ctx, "agent kb")
	if err != nil {
		t.Fatalf("CreateKnowledgeBase() error = %v", err)
	}

	req := NewCreateAgentRequest("support bot", "answers support questions", []string{kbID}, ChatSettings{
		Model:    "QAnything 4o",
		MaxToken: 1024,
	})
	agent, err := client.CreateAgent(ctx, req)
	if err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	if agent.UUID == "" {
		t.Fatal("created agent has no uuid")
	}

	agents, err := client.ListAgents(ctx)
	if err != nil {
		t.Fatalf("ListAgents() error = %v", err)
	}
	if len(agents) != 1 || agents[0].UUID != agent.UUID {
		t.Fatalf("list = %+v, want the created agent", agents)
	}

	if err := client.UpdateAgent(ctx, &UpdateAgentRequest{UUID: agent.UUID, BotName: "support bot v2"}); err != nil {
		t.Fatalf("UpdateAgent() error = %v", err)
	}
	got, err := client.GetAgent(ctx, agent.UUID)
	if err != nil {
		t.Fatalf("GetAgent() error = %v", err)
	}
	if got.Name != "support bot v2" {
		t.Errorf("name after update = %q", got.Name)
	}

	if err := client.DeleteAgent(ctx, agent.UUID); err != nil {
		t.Fatalf("DeleteAgent() error = %v", err)
	}
	if _, err := client.GetAgent(ctx, agent.UUID); !errors.Is(err, ErrRemote) {
		t.Errorf("GetAgent() after delete error = %v, want ErrRemote", err)
	}
}

func TestAgentBindings(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	agent, err := client.CreateAgent(ctx, NewCreateAgentRequest("binder", "", nil, ChatSettings{Model: "QAnything 4o mini", MaxToken: 512}))
	if err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}

	var kbIDs []string
	for i := 0; i < 2; i++ {
		id, err := client.CreateKnowledgeBase(ctx, fmt.Sprintf("kb %d", i))
		if err != nil {
			t.Fatalf("CreateKnowledgeBase() error = %v", err)
		}
		kbIDs = append(kbIDs, id)
	}

	if err := client.BindKnowledgeBases(ctx, agent.UUID, kbIDs); err != nil {
		t.Fatalf("BindKnowledgeBases() error = %v", err)
	}
	got, err := client.GetAgent(ctx, agent.UUID)
	if err != nil {
		t.Fatalf("GetAgent() error = %v", err)
	}
	if len(got.KBIDs) != 2 {
		t.Fatalf("bound kbIds = %v, want 2", got.KBIDs)
	}

	if err := client.UnbindKnowledgeBases(ctx, agent.UUID, kbIDs[:1]); err != nil {
		t.Fatalf("UnbindKnowledgeBases() error = %v", err)
	}
	got, err = client.GetAgent(ctx, agent.UUID)
	if err != nil {
		t.Fatalf("GetAgent() error = %v", err)
	}
	if len(got.KBIDs) != 1 || got.KBIDs[0] != kbIDs[1] {
		t.Errorf("kbIds after unbind = %v, want just %q", got.KBIDs, kbIDs[1])
	}
}

func TestBindKnowledgeBases_Validation(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	if err := client.BindKnowledgeBases(ctx, "agent-1", nil); !IsValidationError(err) {
		t.Errorf("empty kbIds: error = %v, want validation error", err)
	}

	tooMany := make([]string, MaxAgentBindings+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("KB%d", i)
	}
	if err := client.BindKnowledgeBases(ctx, "agent-1", tooMany); !IsValidationError(err) {
		t.Errorf("over the cap: error = %v, want validation error", err)
	}
}

func TestCreateAgentRequest_Validate(t *testing.T) {
	req := NewCreateAgentRequest("", "", nil, ChatSettings{Model: "QAnything 4o", MaxToken: 512})
	if err := req.Validate(); !IsValidationError(err) {
		t.Errorf("empty name: error = %v, want validation error", err)
	}

	tooMany := make([]string, MaxAgentBindings+1)
	req = NewCreateAgentRequest("bot", "", tooMany, ChatSettings{Model: "QAnything 4o", MaxToken: 512})
	if err := req.Validate(); !IsValidationError(err) {
		t.Errorf("over the cap: error = %v, want validation error", err)
	}

	req = NewCreateAgentRequest("bot", "desc", []string{"KB1"}, ChatSettings{Model: "QAnything 4o", MaxToken: 512})
	if err := req.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
	if req.MaxToken != "512" {
		t.Errorf("maxToken = %q, want string form", req.MaxToken)
	}
}
