package qanything

import (
	"context"
	"io"
	"net/url"
)

// CreateKnowledgeBase creates a knowledge base and returns its assigned id.
func (c *Client) CreateKnowledgeBase(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", &ValidationError{
			Field:  "kbName",
			Value:  name,
			Reason: "knowledge base name must not be empty",
			Err:    ErrInvalidRequest,
		}
	}

	var result struct {
		KBID string `json:"kbId"`
	}
	req := struct {
		KBName string `json:"kbName"`
	}{KBName: name}

	if err := c.postJSON(ctx, "/create_kb", req, &result); err != nil {
		return "", err
	}
	return result.KBID, nil
}

// DeleteKnowledgeBase deletes a knowledge base and everything in it.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, kbID string) error {
	req := struct {
		KBID string `json:"kbId"`
	}{KBID: kbID}
	return c.postJSON(ctx, "/delete_kb", req, nil)
}

// ListKnowledgeBases returns all knowledge bases on the account.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	var kbs []KnowledgeBase
	if err := c.getJSON(ctx, "/kb_list", nil, &kbs); err != nil {
		return nil, err
	}
	return kbs, nil
}

// RenameKnowledgeBase changes a knowledge base's display name.
func (c *Client) RenameKnowledgeBase(ctx context.Context, kbID, name string) error {
	req := struct {
		KBID   string `json:"kbId"`
		KBName string `json:"kbName"`
	}{KBID: kbID, KBName: name}
	return c.postJSON(ctx, "/kb_config", req, nil)
}

// UploadFile ingests a document into a knowledge base via multipart upload.
// Ingestion is asynchronous: poll ListFiles for the document's status.
func (c *Client) UploadFile(ctx context.Context, kbID, fileName string, file io.Reader) error {
	fields := map[string]string{"kbId": kbID}
	return c.postMultipart(ctx, "/upload_file", fields, "file", fileName, file, nil)
}

// UploadURL ingests the content behind a URL into a knowledge base.
func (c *Client) UploadURL(ctx context.Context, kbID, docURL string) error {
	req := struct {
		KBID string `json:"kbId"`
		URL  string `json:"url"`
	}{KBID: kbID, URL: docURL}
	return c.postJSON(ctx, "/upload_url", req, nil)
}

// DeleteFiles removes documents from a knowledge base.
func (c *Client) DeleteFiles(ctx context.Context, kbID string, fileIDs []string) error {
	req := struct {
		KBID    string   `json:"kbId"`
		FileIDs []string `json:"fileIds"`
	}{KBID: kbID, FileIDs: fileIDs}
	return c.postJSON(ctx, "/delete_file", req, nil)
}

// ListFiles returns the documents in a knowledge base with their ingest
// status.
func (c *Client) ListFiles(ctx context.Context, kbID string) ([]Document, error) {
	var docs []Document
	query := url.Values{"kbId": {kbID}}
	if err := c.getJSON(ctx, "/file_list", query, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
