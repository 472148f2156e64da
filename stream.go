package qanything

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Streaming chat endpoints.
const (
	pathChatStream      = "/chat_stream"
	pathAgentChatStream = "/bot/chat_stream"
)

// StreamEvent is a single event in a streaming chat response. Exactly one of
// Delta, Complete and Error is set.
type StreamEvent struct {
	// Delta contains an incremental answer fragment (nil on completion/error).
	Delta *ChatDelta

	// Complete is set on the final event of a successful stream, exactly
	// once, whether the stream ended with the [DONE] sentinel or by plain
	// connection close.
	Complete *StreamComplete

	// Error contains any error that occurred during streaming. No further
	// events follow an error; in particular Complete is never sent after it.
	Error error
}

// ChatDelta is one incremental unit of the streamed answer.
type ChatDelta struct {
	// Text is the new fragment carried by this delta.
	Text string

	// Response is the full answer accumulated so far, including Text.
	// Consumers typically render this rather than splicing fragments.
	Response string
}

// StreamComplete carries the final accumulated answer.
type StreamComplete struct {
	Response string
}

// StreamKnowledgeBaseChat starts a knowledge-base chat and returns a channel
// of stream events. The request is validated before any network call. The
// channel is closed after the terminal event; cancelling ctx releases the
// connection promptly and ends the stream without a completion event.
//
// Usage:
//
//	events, err := client.StreamKnowledgeBaseChat(ctx, req)
//	if err != nil { return err }
//	for ev := range events {
//	    if ev.Error != nil { handle error }
//	    if ev.Delta != nil { render ev.Delta.Response }
//	    if ev.Complete != nil { append turn to history }
//	}
func (c *Client) StreamKnowledgeBaseChat(ctx context.Context, req *KnowledgeBaseChatRequest) (<-chan StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.streamChat(ctx, pathChatStream, req)
}

// StreamAgentChat starts an agent chat and returns a channel of stream
// events. Semantics match StreamKnowledgeBaseChat.
func (c *Client) StreamAgentChat(ctx context.Context, req *AgentChatRequest) (<-chan StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.streamChat(ctx, pathAgentChatStream, req)
}

// streamChat owns one session's lifecycle: it opens the connection, drives
// the decode/parse loop in a goroutine, and emits events in decode order.
// Both chat variants share this loop; only the path and body differ.
func (c *Client) streamChat(ctx context.Context, path string, reqBody any) (<-chan StreamEvent, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	events := make(chan StreamEvent, 8)

	go func() {
		defer close(events)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.emit(ctx, events, StreamEvent{Error: &APIError{
				Code:     ErrorCodeUnavailable,
				Endpoint: path,
				Message:  err.Error(),
				Err:      ErrUnavailable,
			}})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			c.emit(ctx, events, StreamEvent{Error: c.handleErrorResponse(resp, path)})
			return
		}

		c.readStream(ctx, path, resp.Body, events)
	}()

	return events, nil
}

// session holds the per-request stream state: the decoder's residual buffer
// via dec and the accumulated answer. It is owned exclusively by one
// readStream call; sessions never share state.
type session struct {
	dec         eventDecoder
	accumulated bytes.Buffer
}

// readStream reads the response body in chunks, feeds the decoder, and
// dispatches each parsed frame. It guarantees exactly one terminal event:
// Complete on [DONE] or clean EOF, Error on transport failure or a
// remote-reported error frame.
func (c *Client) readStream(ctx context.Context, path string, body io.Reader, events chan<- StreamEvent) {
	var s session
	buf := make([]byte, 4096)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, f := range s.dec.Feed(string(buf[:n])) {
				if done := c.dispatchFrame(ctx, path, &s, f, events); done {
					return
				}
			}
		}

		if readErr == io.EOF {
			// Flush any residual line, then treat plain connection close as
			// an equivalent termination path to the [DONE] sentinel.
			for _, f := range s.dec.Flush() {
				if done := c.dispatchFrame(ctx, path, &s, f, events); done {
					return
				}
			}
			c.emit(ctx, events, StreamEvent{Complete: &StreamComplete{Response: s.accumulated.String()}})
			return
		}
		if readErr != nil {
			if ctx.Err() != nil {
				// Consumer cancelled: no further events.
				return
			}
			c.emit(ctx, events, StreamEvent{Error: &APIError{
				Code:     ErrorCodeUnavailable,
				Endpoint: path,
				Message:  readErr.Error(),
				Err:      ErrUnavailable,
			}})
			return
		}
	}
}

// dispatchFrame interprets one decoded frame and emits the matching event.
// It returns true once the session has reached a terminal state.
func (c *Client) dispatchFrame(ctx context.Context, path string, s *session, f streamFrame, events chan<- StreamEvent) bool {
	// event: lines are label-only framing in this protocol.
	if f.label != frameData {
		return false
	}

	parsed, ok := parseStreamData(f.payload)
	if !ok {
		c.logger.Warn("skipping malformed stream frame", "endpoint", path, "payload", f.payload)
		return false
	}

	switch parsed.kind {
	case frameFragment:
		s.accumulated.WriteString(parsed.fragment)
		return !c.emit(ctx, events, StreamEvent{Delta: &ChatDelta{
			Text:     parsed.fragment,
			Response: s.accumulated.String(),
		}})
	case frameError:
		c.emit(ctx, events, StreamEvent{Error: parsed.remote})
		return true
	case frameDone:
		c.emit(ctx, events, StreamEvent{Complete: &StreamComplete{Response: s.accumulated.String()}})
		return true
	default:
		return false
	}
}

// emit sends an event unless the consumer has gone away. It reports whether
// the send happened; a false return means the session was cancelled.
func (c *Client) emit(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
