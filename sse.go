package qanything

import "strings"

// frameLabel classifies a decoded protocol line.
type frameLabel string

const (
	frameEvent frameLabel = "event"
	frameData  frameLabel = "data"
)

// streamFrame is one decoded protocol unit: an "event:" or "data:" line with
// its payload. Frames never leave the streaming core.
type streamFrame struct {
	label   frameLabel
	payload string
}

// eventDecoder turns incoming text chunks of arbitrary length into complete
// protocol frames. Chunks may split a line anywhere or contain several lines;
// the trailing incomplete fragment is retained across calls so no line is
// ever lost to a chunk boundary.
//
// Prefix policy: the literal "data:"/"event:" prefix is stripped along with
// at most one following space. The remote protocol is inconsistent about that
// space ("data:{...}" vs "data: {...}"), and the payloads are JSON or the
// [DONE] sentinel, neither of which starts with a meaningful space.
type eventDecoder struct {
	residual string
}

// Feed appends a chunk and returns all frames completed by it.
func (d *eventDecoder) Feed(chunk string) []streamFrame {
	d.residual += chunk

	lines := strings.Split(d.residual, "\n")
	d.residual = lines[len(lines)-1]

	var frames []streamFrame
	for _, line := range lines[:len(lines)-1] {
		if f, ok := classifyLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Flush drains the residual buffer at end of stream, running any final
// unterminated line through the same classification as complete lines.
func (d *eventDecoder) Flush() []streamFrame {
	line := d.residual
	d.residual = ""

	if f, ok := classifyLine(line); ok {
		return []streamFrame{f}
	}
	return nil
}

// classifyLine maps one complete line to a frame. Blank lines and lines with
// an unknown prefix are discarded; "event:" lines are recognized but carry no
// payload this client needs, so they yield a frame only for completeness.
func classifyLine(line string) (streamFrame, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return streamFrame{}, false
	}

	if rest, ok := strings.CutPrefix(line, "data:"); ok {
		return streamFrame{label: frameData, payload: trimOneSpace(rest)}, true
	}
	if rest, ok := strings.CutPrefix(line, "event:"); ok {
		return streamFrame{label: frameEvent, payload: trimOneSpace(rest)}, true
	}
	return streamFrame{}, false
}

// trimOneSpace strips at most one leading space after the frame prefix.
func trimOneSpace(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}
