package qanything

import "context"

// ChatHandler receives stream events as discrete callbacks, for call sites
// that prefer the push style over ranging a channel. Any callback may be nil.
type ChatHandler struct {
	// OnDelta is invoked for each answer fragment, in arrival order.
	OnDelta func(delta ChatDelta)

	// OnError is invoked at most once, on transport or remote failure.
	// OnComplete is not invoked after it.
	OnError func(err error)

	// OnComplete is invoked exactly once when the stream finishes
	// successfully, with the full accumulated answer.
	OnComplete func(complete StreamComplete)
}

// KnowledgeBaseChatWithHandler runs a knowledge-base chat, dispatching events
// to the handler. It is a thin adapter over StreamKnowledgeBaseChat: both
// styles share the same decode/parse pipeline. It blocks until the stream
// reaches a terminal state or ctx is cancelled, and returns the terminal
// error, if any (nil on completion and on caller cancellation).
func (c *Client) KnowledgeBaseChatWithHandler(ctx context.Context, req *KnowledgeBaseChatRequest, h ChatHandler) error {
	events, err := c.StreamKnowledgeBaseChat(ctx, req)
	if err != nil {
		return err
	}
	return h.consume(events)
}

// AgentChatWithHandler runs an agent chat, dispatching events to the handler.
// Semantics match KnowledgeBaseChatWithHandler.
func (c *Client) AgentChatWithHandler(ctx context.Context, req *AgentChatRequest, h ChatHandler) error {
	events, err := c.StreamAgentChat(ctx, req)
	if err != nil {
		return err
	}
	return h.consume(events)
}

// consume maps each stream event to the matching callback, preserving order.
// Exactly one of OnComplete/OnError fires per stream, barring caller
// cancellation, which fires neither.
func (h ChatHandler) consume(events <-chan StreamEvent) error {
	for ev := range events {
		switch {
		case ev.Delta != nil:
			if h.OnDelta != nil {
				h.OnDelta(*ev.Delta)
			}
		case ev.Error != nil:
			if h.OnError != nil {
				h.OnError(ev.Error)
			}
			return ev.Error
		case ev.Complete != nil:
			if h.OnComplete != nil {
				h.OnComplete(*ev.Complete)
			}
			return nil
		}
	}
	// Channel closed without a terminal event: the caller cancelled.
	return nil
}

// CollectStream drains a stream and returns the final accumulated answer.
// Useful for tests and call sites that do not need incremental rendering.
func CollectStream(events <-chan StreamEvent) (string, error) {
	var last string
	for ev := range events {
		switch {
		case ev.Delta != nil:
			last = ev.Delta.Response
		case ev.Error != nil:
			return last, ev.Error
		case ev.Complete != nil:
			return ev.Complete.Response, nil
		}
	}
	return last, nil
}
