package qanything

import (
	"encoding/json"
	"strings"
)

// doneSentinel terminates a stream explicitly. Streams may also end by plain
// connection close; both paths are equivalent.
const doneSentinel = "[DONE]"

// frameKind classifies the outcome of parsing one data frame.
type frameKind int

const (
	frameSkip     frameKind = iota // nothing extractable, continue reading
	frameFragment                  // carries a response text fragment
	frameError                     // remote-reported error, terminate
	frameDone                      // terminal sentinel, complete
)

// chatStreamPayload covers both envelope shapes the streaming endpoints emit:
// the errorCode style {errorCode, msg, result: {response}} and the older
// success style {success, msg, result: {response}}.
type chatStreamPayload struct {
	ErrorCode string `json:"errorCode"`
	Success   *bool  `json:"success"`
	Msg       string `json:"msg"`
	Result    struct {
		Response string `json:"response"`
	} `json:"result"`
}

// parsedFrame is the result of interpreting one data payload.
type parsedFrame struct {
	kind     frameKind
	fragment string       // set for frameFragment
	remote   *RemoteError // set for frameError
}

// parseStreamData interprets a "data:" payload as one response delta.
// Malformed JSON is reported as a skip with ok=false so the session can log a
// decode warning without failing the stream; the remote protocol may
// interleave heartbeat or partial frames.
func parseStreamData(payload string) (parsedFrame, bool) {
	if strings.TrimSpace(payload) == doneSentinel {
		return parsedFrame{kind: frameDone}, true
	}

	var p chatStreamPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return parsedFrame{kind: frameSkip}, false
	}

	if (p.ErrorCode != "" && p.ErrorCode != envelopeSuccessCode) || (p.Success != nil && !*p.Success) {
		code := p.ErrorCode
		if code == "" {
			code = "unknown"
		}
		return parsedFrame{
			kind:   frameError,
			remote: &RemoteError{Code: code, Msg: p.Msg},
		}, true
	}

	if p.Result.Response != "" {
		return parsedFrame{kind: frameFragment, fragment: p.Result.Response}, true
	}

	// Well-formed frame with no fragment and no error indicator: skip silently.
	return parsedFrame{kind: frameSkip}, true
}
