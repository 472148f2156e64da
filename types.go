package qanything

import (
	"encoding/json"
	"fmt"
)

// StringBool is a boolean that marshals to the literal JSON strings "true" and
// "false". The remote API types all of its flag fields as strings, so this is
// a wire-format constraint rather than a stylistic choice.
type StringBool bool

// MarshalJSON encodes the value as the JSON string "true" or "false".
func (b StringBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// UnmarshalJSON accepts both the string form ("true"/"false") and, for
// robustness, native JSON booleans.
func (b *StringBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"true"`, `true`:
		*b = true
	case `"false"`, `false`, `""`:
		*b = false
	default:
		return fmt.Errorf("qanything: cannot unmarshal %s into StringBool", data)
	}
	return nil
}

// Bool returns the native boolean value.
func (b StringBool) Bool() bool {
	return bool(b)
}

// apiResponse is the uniform envelope returned by every non-streaming
// endpoint: {errorCode, msg, requestId, result}. errorCode "0" denotes
// success; Result is decoded lazily into an endpoint-specific type.
type apiResponse struct {
	ErrorCode string          `json:"errorCode"`
	Msg       string          `json:"msg"`
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result"`
}

// ok reports whether the envelope carries a success code.
func (r *apiResponse) ok() bool {
	return r.ErrorCode == envelopeSuccessCode
}

// envelopeSuccessCode is the errorCode value the remote API uses for success.
const envelopeSuccessCode = "0"

// KnowledgeBase is a remote-managed document/FAQ collection, used as
// retrieval context for knowledge-base-mode chat.
type KnowledgeBase struct {
	KBID       string `json:"kbId"`
	KBName     string `json:"kbName"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// Document ingest status values reported by the file list endpoint.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusSuccess    = "success"
	DocumentStatusFailed     = "failed"
)

// Document is a file or URL ingested into a knowledge base.
type Document struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize,omitempty"`
	UploadTime string `json:"uploadTime,omitempty"`
	Status     string `json:"status,omitempty"`
}

// FAQ is a question/answer pair attached to a knowledge base.
type FAQ struct {
	FAQID      string `json:"faqId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// Agent is a remote-managed, preconfigured chat persona bound to zero or more
// knowledge bases. Note the detail endpoint returns native booleans and
// numbers here, unlike the string-typed flags on request bodies.
type Agent struct {
	UUID           string   `json:"uuid"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Model          string   `json:"model"`
	MaxToken       int      `json:"maxToken"`
	HybridSearch   bool     `json:"hybridSearch"`
	Networking     bool     `json:"networking"`
	NeedSource     bool     `json:"needSource"`
	PromptSetting  string   `json:"promptSetting,omitempty"`
	WelcomeMessage string   `json:"welcomeMessage,omitempty"`
	ContextLength  int      `json:"contextLength,omitempty"`
	RerankTopK     int      `json:"rerankTopK,omitempty"`
	RerankScore    string   `json:"rerankScore,omitempty"`
	KBIDs          []string `json:"kbIds,omitempty"`
}
