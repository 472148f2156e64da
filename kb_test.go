package qanything

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yuezhi/qanything-go/qatest"
)

func fakeClient(t *testing.T) *Client {
	t.Helper()
	server := qatest.NewServer(qatest.WithAPIKey("test-key"))
	t.Cleanup(server.Close)
	return testClient(t, server.URL())
}

func TestKnowledgeBaseLifecycle(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	kbID, err := client.CreateKnowledgeBase(ctx, "support docs")
	if err != nil {
		t.Fatalf("CreateKnowledgeBase() error = %v", err)
	}
	if !strings.HasPrefix(kbID, "KB") {
		t.Errorf("kbId = %q, want KB prefix", kbID)
	}

	kbs, err := client.ListKnowledgeBases(ctx)
	if err != nil {
		t.Fatalf("ListKnowledgeBases() error = %v", err)
	}
	if len(kbs) != 1 || kbs[0].KBID != kbID || kbs[0].KBName != "support docs" {
		t.Fatalf("list = %+v, want the created knowledge base", kbs)
	}

	if err := client.RenameKnowledgeBase(ctx, kbID, "support docs v2"); err != nil {
		t.Fatalf("RenameKnowledgeBase() error = %v", err)
	}
	kbs, err = client.ListKnowledgeBases(ctx)
	if err != nil {
		t.Fatalf("ListKnowledgeBases() error = %v", err)
	}
	if kbs[0].KBName != "support docs v2" {
		t.Errorf("name after rename = %q", kbs[0].KBName)
	}

	if err := client.DeleteKnowledgeBase(ctx, kbID); err != nil {
		t.Fatalf("DeleteKnowledgeBase() error = %v", err)
	}
	kbs, err = client.ListKnowledgeBases(ctx)
	if err != nil {
		t.Fatalf("ListKnowledgeBases() error = %v", err)
	}
	if len(kbs) != 0 {
		t.Errorf("list after delete = %+v, want empty", kbs)
	}
}

func TestCreateKnowledgeBase_RequiresName(t *testing.T) {
	client := fakeClient(t)
	if _, err := client.CreateKnowledgeBase(context.Background(), ""); !IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	kbID, err := client.CreateKnowledgeBase(ctx, "docs")
	if err != nil {
		t.Fatalf("CreateKnowledgeBase() error = %v", err)
	}

	content := strings.NewReader("# Returns\nItems can be returned within 30 days.")
	if err := client.UploadFile(ctx, kbID, "returns.md", content); err != nil {
		t.Fatalf("UploadFile() error = %v", err)
	}
	if err := client.UploadURL(ctx, kbID, "https://example.com/faq.html"); err != nil {
		t.Fatalf("UploadURL() error = %v", err)
	}

	docs, err := client.ListFiles(ctx, kbID)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	for _, d := range docs {
		if d.FileID == "" {
			t.Errorf("document %q has no fileId", d.FileName)
		}
		if d.Status != DocumentStatusSuccess {
			t.Errorf("document %q status = %q", d.FileName, d.Status)
		}
	}

	ids := []string{docs[0].FileID, docs[1].FileID}
	if err := client.DeleteFiles(ctx, kbID, ids); err != nil {
		t.Fatalf("DeleteFiles() error = %v", err)
	}
	docs, err = client.ListFiles(ctx, kbID)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents after delete, want 0", len(docs))
	}
}

func TestKnowledgeBaseOperations_NotFound(t *testing.T) {
	client := fakeClient(t)
	ctx := context.Background()

	err := client.DeleteKnowledgeBase(ctx, "KB-missing")
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Code != "102" {
		t.Errorf("error = %v, want RemoteError 102", err)
	}
	if _, err := client.ListFiles(ctx, "KB-missing"); !errors.Is(err, ErrRemote) {
		t.Errorf("error = %v, want ErrRemote", err)
	}
}
