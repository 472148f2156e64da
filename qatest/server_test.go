package qatest_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	qanything "github.com/yuezhi/qanything-go"
	"github.com/yuezhi/qanything-go/qatest"
)

func newClient(t *testing.T, server *qatest.Server) *qanything.Client {
	t.Helper()
	client, err := qanything.NewClient("fake-key", qanything.WithBaseURL(server.URL()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func chatRequest(t *testing.T) *qanything.KnowledgeBaseChatRequest {
	t.Helper()
	req, err := qanything.NewKnowledgeBaseChatRequest("anything", []string{"KB1"}, qanything.ChatSettings{
		Model:    "QAnything 4o mini",
		MaxToken: 256,
	}, nil)
	if err != nil {
		t.Fatalf("NewKnowledgeBaseChatRequest() error = %v", err)
	}
	return req
}

func TestServer_StreamsGeneratedAnswer(t *testing.T) {
	server := qatest.NewServer()
	defer server.Close()
	client := newClient(t, server)

	events, err := client.StreamKnowledgeBaseChat(context.Background(), chatRequest(t))
	if err != nil {
		t.Fatalf("StreamKnowledgeBaseChat() error = %v", err)
	}
	answer, err := qanything.CollectStream(events)
	if err != nil {
		t.Fatalf("CollectStream() error = %v", err)
	}
	if answer == "" {
		t.Error("generated answer is empty")
	}
}

func TestServer_RejectsWrongAPIKey(t *testing.T) {
	server := qatest.NewServer(qatest.WithAPIKey("right-key"))
	defer server.Close()

	client, err := qanything.NewClient("wrong-key", qanything.WithBaseURL(server.URL()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = client.ListKnowledgeBases(context.Background())
	if !qanything.IsAuthError(err) {
		t.Errorf("error = %v, want auth error", err)
	}
}

func TestServer_ChatFailStatus(t *testing.T) {
	server := qatest.NewServer(qatest.WithChatFailStatus(http.StatusServiceUnavailable))
	defer server.Close()
	client := newClient(t, server)

	events, err := client.StreamKnowledgeBaseChat(context.Background(), chatRequest(t))
	if err != nil {
		t.Fatalf("StreamKnowledgeBaseChat() error = %v", err)
	}
	_, err = qanything.CollectStream(events)
	var apiErr *qanything.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("error = %v, want APIError 503", err)
	}
}

func TestServer_ChatErrorFrame(t *testing.T) {
	server := qatest.NewServer(qatest.WithChatErrorFrame(`{"errorCode":"9","msg":"simulated failure"}`))
	defer server.Close()
	client := newClient(t, server)

	events, err := client.StreamKnowledgeBaseChat(context.Background(), chatRequest(t))
	if err != nil {
		t.Fatalf("StreamKnowledgeBaseChat() error = %v", err)
	}
	_, err = qanything.CollectStream(events)
	var remote *qanything.RemoteError
	if !errors.As(err, &remote) || remote.Code != "9" {
		t.Errorf("error = %v, want RemoteError 9", err)
	}
}

func TestServer_AgentChatStream(t *testing.T) {
	server := qatest.NewServer()
	defer server.Close()
	client := newClient(t, server)

	req := &qanything.AgentChatRequest{UUID: "agent-1", Question: "hi"}
	events, err := client.StreamAgentChat(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamAgentChat() error = %v", err)
	}
	if _, err := qanything.CollectStream(events); err != nil {
		t.Errorf("agent chat with uuid failed: %v", err)
	}
}
