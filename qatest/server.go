// Package qatest provides an in-process fake of the QAnything API for
// development and tests without a real API key. The fake implements the
// streaming chat endpoints with generated lorem ipsum answers plus in-memory
// knowledge-base, FAQ and agent management, using the production wire
// formats: the {errorCode, msg, requestId, result} envelope and
// "data:"-framed event streams terminated by [DONE].
package qatest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"
)

// Server is a fake QAnything API server backed by httptest.
type Server struct {
	httpServer *httptest.Server
	generator  *loremgen.Lorem

	apiKey string

	// failStatus, when non-zero, makes the chat endpoints answer with that
	// HTTP status instead of a stream. For transport-error tests.
	failStatus int

	// errorFrame, when set, is emitted as the stream's second frame in place
	// of further fragments. For remote-error tests.
	errorFrame string

	mu     sync.Mutex
	kbs    map[string]*knowledgeBase
	agents map[string]*agent
}

type knowledgeBase struct {
	name  string
	files map[string]string // fileId -> fileName
	faqs  map[string][2]string
}

type agent struct {
	name        string
	description string
	kbIDs       []string
}

// Option configures the fake server.
type Option func(*Server)

// WithAPIKey makes the server reject requests whose Authorization header
// does not carry exactly this key.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithChatFailStatus makes the chat endpoints fail with an HTTP status
// before streaming.
func WithChatFailStatus(status int) Option {
	return func(s *Server) {
		s.failStatus = status
	}
}

// WithChatErrorFrame makes the chat endpoints emit the given payload as a
// data frame after the first fragment, then stop without [DONE].
func WithChatErrorFrame(payload string) Option {
	return func(s *Server) {
		s.errorFrame = payload
	}
}

// NewServer starts a fake server. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		generator: loremgen.New(),
		kbs:       make(map[string]*knowledgeBase),
		agents:    make(map[string]*agent),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat_stream", s.handleChatStream)
	mux.HandleFunc("/bot/chat_stream", s.handleChatStream)
	mux.HandleFunc("/create_kb", s.handleCreateKB)
	mux.HandleFunc("/delete_kb", s.handleDeleteKB)
	mux.HandleFunc("/kb_list", s.handleKBList)
	mux.HandleFunc("/kb_config", s.handleKBConfig)
	mux.HandleFunc("/upload_file", s.handleUploadFile)
	mux.HandleFunc("/upload_url", s.handleUploadURL)
	mux.HandleFunc("/delete_file", s.handleDeleteFile)
	mux.HandleFunc("/file_list", s.handleFileList)
	mux.HandleFunc("/upload_faq", s.handleUploadFAQ)
	mux.HandleFunc("/update_faq", s.handleUpdateFAQ)
	mux.HandleFunc("/delete_faq", s.handleDeleteFAQ)
	mux.HandleFunc("/faq_list", s.handleFAQList)
	mux.HandleFunc("/faqDetail", s.handleFAQDetail)
	mux.HandleFunc("/bot/create", s.handleCreateAgent)
	mux.HandleFunc("/bot/update", s.handleUpdateAgent)
	mux.HandleFunc("/bot/delete", s.handleDeleteAgent)
	mux.HandleFunc("/bot/list", s.handleAgentList)
	mux.HandleFunc("/bot/detail", s.handleAgentDetail)
	mux.HandleFunc("/bot/bindKbs", s.handleBindKBs)
	mux.HandleFunc("/bot/unbindKbs", s.handleUnbindKBs)

	s.httpServer = httptest.NewServer(s.withAuth(mux))
	return s
}

// URL returns the base URL to pass as the client's WithBaseURL option.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// withAuth enforces the raw-key Authorization header when configured.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("Authorization") != s.apiKey {
			http.Error(w, "invalid api key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeEnvelope writes the uniform response envelope.
func writeEnvelope(w http.ResponseWriter, code, msg string, result any) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"errorCode": code,
		"msg":       msg,
		"requestId": uuid.NewString(),
	}
	if result != nil {
		resp["result"] = result
	}
	json.NewEncoder(w).Encode(resp)
}

// handleChatStream serves both chat endpoints: it streams a lorem ipsum
// answer word by word in data frames and terminates with [DONE].
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string   `json:"question"`
		UUID     string   `json:"uuid"`
		KBIDs    []string `json:"kbIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/bot/chat_stream") && req.UUID == "" {
		http.Error(w, "missing uuid", http.StatusBadRequest)
		return
	}

	if s.failStatus != 0 {
		http.Error(w, "chat unavailable", s.failStatus)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)

	writeFrame := func(payload string) {
		fmt.Fprintf(w, "event:message\ndata:%s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}

	words := strings.Fields(s.generator.Sentence(5, 12))
	for i, word := range words {
		if i > 0 {
			word = " " + word
		}
		frame, _ := json.Marshal(map[string]any{
			"errorCode": "0",
			"result":    map[string]string{"response": word},
		})
		writeFrame(string(frame))

		if s.errorFrame != "" {
			writeFrame(s.errorFrame)
			return
		}
	}
	writeFrame("[DONE]")
}

func (s *Server) handleCreateKB(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBName string `json:"kbName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.KBName == "" {
		writeEnvelope(w, "1", "kbName is required", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kbID := "KB" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.kbs[kbID] = &knowledgeBase{
		name:  req.KBName,
		files: make(map[string]string),
		faqs:  make(map[string][2]string),
	}
	writeEnvelope(w, "0", "success", map[string]string{"kbId": kbID})
}

func (s *Server) handleDeleteKB(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID string `json:"kbId"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kbs[req.KBID]; !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	delete(s.kbs, req.KBID)
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleKBList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]map[string]string, 0, len(s.kbs))
	for id, kb := range s.kbs {
		list = append(list, map[string]string{"kbId": id, "kbName": kb.name})
	}
	writeEnvelope(w, "0", "success", list)
}

func (s *Server) handleKBConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID   string `json:"kbId"`
		KBName string `json:"kbName"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[req.KBID]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	kb.name = req.KBName
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeEnvelope(w, "1", "expected multipart form", nil)
		return
	}
	kbID := r.FormValue("kbId")
	_, header, err := r.FormFile("file")
	if err != nil {
		writeEnvelope(w, "1", "file is required", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[kbID]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	kb.files[uuid.NewString()] = header.Filename
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID string `json:"kbId"`
		URL  string `json:"url"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[req.KBID]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	kb.files[uuid.NewString()] = req.URL
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID    string   `json:"kbId"`
		FileIDs []string `json:"fileIds"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if kb, ok := s.kbs[req.KBID]; ok {
		for _, id := range req.FileIDs {
			delete(kb.files, id)
		}
	}
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.URL.Query().Get("kbId")]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	list := make([]map[string]any, 0, len(kb.files))
	for id, name := range kb.files {
		list = append(list, map[string]any{"fileId": id, "fileName": name, "status": "success"})
	}
	writeEnvelope(w, "0", "success", list)
}

func (s *Server) handleUploadFAQ(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeEnvelope(w, "1", "expected multipart form", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.FormValue("kbId")]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	kb.faqs[uuid.NewString()] = [2]string{r.FormValue("question"), r.FormValue("answer")}
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeEnvelope(w, "1", "expected multipart form", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.FormValue("kbId")]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	faqID := r.FormValue("faqId")
	if _, ok := kb.faqs[faqID]; !ok {
		writeEnvelope(w, "102", "faq not found", nil)
		return
	}
	kb.faqs[faqID] = [2]string{r.FormValue("question"), r.FormValue("answer")}
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID   string   `json:"kbId"`
		FAQIDs []string `json:"faqIds"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if kb, ok := s.kbs[req.KBID]; ok {
		for _, id := range req.FAQIDs {
			delete(kb.faqs, id)
		}
	}
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleFAQDetail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KBID  string `json:"kbId"`
		FAQID string `json:"faqId"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[req.KBID]
	if !ok {
		writeEnvelope(w, "102", "knowledge base not found", nil)
		return
	}
	qa, ok := kb.faqs[req.FAQID]
	if !ok {
		writeEnvelope(w, "102", "faq not found", nil)
		return
	}
	writeEnvelope(w, "0", "success", map[string]string{
		"faqId":    req.FAQID,
		"question": qa[0],
		"answer":   qa[1],
	})
}

// handleFAQList mirrors the production quirk of reporting errorCode 303 for
// a knowledge base that has no FAQ set yet.
func (s *Server) handleFAQList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kb, ok := s.kbs[r.URL.Query().Get("kbId")]
	if !ok || len(kb.faqs) == 0 {
		writeEnvelope(w, "303", "FAQ set not initialized", nil)
		return
	}
	list := make([]map[string]string, 0, len(kb.faqs))
	for id, qa := range kb.faqs {
		list = append(list, map[string]string{"faqId": id, "question": qa[0], "answer": qa[1]})
	}
	writeEnvelope(w, "0", "success", map[string]any{"faqList": list, "total": len(list)})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BotName        string   `json:"botName"`
		BotDescription string   `json:"botDescription"`
		KBIDs          []string `json:"kbIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BotName == "" {
		writeEnvelope(w, "1", "botName is required", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.agents[id] = &agent{name: req.BotName, description: req.BotDescription, kbIDs: req.KBIDs}
	writeEnvelope(w, "0", "success", map[string]any{
		"uuid": id,
		"name": req.BotName,
	})
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID           string `json:"uuid"`
		BotName        string `json:"botName"`
		BotDescription string `json:"botDescription"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.UUID]
	if !ok {
		writeEnvelope(w, "102", "agent not found", nil)
		return
	}
	if req.BotName != "" {
		a.name = req.BotName
	}
	if req.BotDescription != "" {
		a.description = req.BotDescription
	}
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID string `json:"uuid"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[req.UUID]; !ok {
		writeEnvelope(w, "102", "agent not found", nil)
		return
	}
	delete(s.agents, req.UUID)
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.URL.Query().Get("uuid")
	a, ok := s.agents[id]
	if !ok {
		writeEnvelope(w, "102", "agent not found", nil)
		return
	}
	writeEnvelope(w, "0", "success", map[string]any{
		"uuid":        id,
		"name":        a.name,
		"description": a.description,
		"kbIds":       a.kbIDs,
	})
}

func (s *Server) handleAgentList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]map[string]any, 0, len(s.agents))
	for id, a := range s.agents {
		list = append(list, map[string]any{"uuid": id, "name": a.name, "kbIds": a.kbIDs})
	}
	writeEnvelope(w, "0", "success", list)
}

func (s *Server) handleBindKBs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID  string   `json:"uuid"`
		KBIDs []string `json:"kbIds"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.UUID]
	if !ok {
		writeEnvelope(w, "102", "agent not found", nil)
		return
	}
	a.kbIDs = append(a.kbIDs, req.KBIDs...)
	writeEnvelope(w, "0", "success", nil)
}

func (s *Server) handleUnbindKBs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUID  string   `json:"uuid"`
		KBIDs []string `json:"kbIds"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[req.UUID]
	if !ok {
		writeEnvelope(w, "102", "agent not found", nil)
		return
	}
	drop := make(map[string]bool, len(req.KBIDs))
	for _, id := range req.KBIDs {
		drop[id] = true
	}
	kept := a.kbIDs[:0]
	for _, id := range a.kbIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	a.kbIDs = kept
	writeEnvelope(w, "0", "success", nil)
}
