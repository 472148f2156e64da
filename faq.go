package qanything

import (
	"context"
	"errors"
	"net/url"
)

// faqListEmptyCode is returned by /faq_list for knowledge bases that have no
// FAQ set yet. It is treated as an empty list, not a failure.
const faqListEmptyCode = "303"

// FAQList is the result of listing a knowledge base's FAQs.
type FAQList struct {
	FAQList []FAQ `json:"faqList"`
	Total   int   `json:"total"`
}

// CreateFAQ adds a question/answer pair to a knowledge base. The remote
// endpoint takes a multipart form rather than JSON.
func (c *Client) CreateFAQ(ctx context.Context, kbID, question, answer string) error {
	if question == "" || answer == "" {
		return &ValidationError{
			Field:  "question/answer",
			Value:  question,
			Reason: "FAQ question and answer must not be empty",
			Err:    ErrInvalidRequest,
		}
	}

	fields := map[string]string{
		"kbId":     kbID,
		"question": question,
		"answer":   answer,
	}
	return c.postMultipart(ctx, "/upload_faq", fields, "", "", nil, nil)
}

// UpdateFAQ replaces the question/answer of an existing FAQ.
func (c *Client) UpdateFAQ(ctx context.Context, kbID, faqID, question, answer string) error {
	fields := map[string]string{
		"kbId":     kbID,
		"faqId":    faqID,
		"question": question,
		"answer":   answer,
	}
	return c.postMultipart(ctx, "/update_faq", fields, "", "", nil, nil)
}

// DeleteFAQs removes FAQs from a knowledge base.
func (c *Client) DeleteFAQs(ctx context.Context, kbID string, faqIDs []string) error {
	req := struct {
		KBID   string   `json:"kbId"`
		FAQIDs []string `json:"faqIds"`
	}{KBID: kbID, FAQIDs: faqIDs}
	return c.postJSON(ctx, "/delete_faq", req, nil)
}

// ListFAQs returns a knowledge base's FAQs. A knowledge base with no FAQ set
// yet yields an empty list.
func (c *Client) ListFAQs(ctx context.Context, kbID string) (*FAQList, error) {
	var list FAQList
	query := url.Values{"kbId": {kbID}}
	if err := c.getJSON(ctx, "/faq_list", query, &list); err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.Code == faqListEmptyCode {
			return &FAQList{FAQList: []FAQ{}}, nil
		}
		return nil, err
	}
	return &list, nil
}

// GetFAQDetail fetches one FAQ by id.
func (c *Client) GetFAQDetail(ctx context.Context, kbID, faqID string) (*FAQ, error) {
	req := struct {
		KBID  string `json:"kbId"`
		FAQID string `json:"faqId"`
	}{KBID: kbID, FAQID: faqID}

	var faq FAQ
	if err := c.postJSON(ctx, "/faqDetail", req, &faq); err != nil {
		return nil, err
	}
	return &faq, nil
}
