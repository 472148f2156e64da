package qanything

import (
	"errors"
	"testing"
)

func TestParseStreamData(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantKind frameKind
		wantOK   bool
		fragment string
	}{
		{
			name:     "done sentinel",
			payload:  "[DONE]",
			wantKind: frameDone,
			wantOK:   true,
		},
		{
			name:     "done sentinel with padding",
			payload:  "  [DONE] ",
			wantKind: frameDone,
			wantOK:   true,
		},
		{
			name:     "fragment",
			payload:  `{"errorCode":"0","result":{"response":"He"}}`,
			wantKind: frameFragment,
			wantOK:   true,
			fragment: "He",
		},
		{
			name:     "fragment without errorCode",
			payload:  `{"result":{"response":"llo"}}`,
			wantKind: frameFragment,
			wantOK:   true,
			fragment: "llo",
		},
		{
			name:     "remote error via errorCode",
			payload:  `{"errorCode":"1","msg":"quota exceeded"}`,
			wantKind: frameError,
			wantOK:   true,
		},
		{
			name:     "remote error via success flag",
			payload:  `{"success":false,"msg":"bad things"}`,
			wantKind: frameError,
			wantOK:   true,
		},
		{
			name:     "malformed json",
			payload:  `{not valid json`,
			wantKind: frameSkip,
			wantOK:   false,
		},
		{
			name:     "well-formed but empty frame skipped",
			payload:  `{"errorCode":"0","result":{}}`,
			wantKind: frameSkip,
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := parseStreamData(tt.payload)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if parsed.kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", parsed.kind, tt.wantKind)
			}
			if tt.fragment != "" && parsed.fragment != tt.fragment {
				t.Errorf("fragment = %q, want %q", parsed.fragment, tt.fragment)
			}
		})
	}
}

func TestParseStreamData_RemoteErrorDetails(t *testing.T) {
	parsed, ok := parseStreamData(`{"errorCode":"1","msg":"quota exceeded"}`)
	if !ok || parsed.kind != frameError {
		t.Fatalf("parsed = %+v, ok = %v", parsed, ok)
	}
	if parsed.remote.Code != "1" || parsed.remote.Msg != "quota exceeded" {
		t.Errorf("remote = %+v", parsed.remote)
	}
	if !errors.Is(parsed.remote, ErrRemote) {
		t.Error("remote error should wrap ErrRemote")
	}
}

func TestParseStreamData_SuccessFlagErrorHasFallbackCode(t *testing.T) {
	parsed, ok := parseStreamData(`{"success":false,"msg":"denied"}`)
	if !ok || parsed.kind != frameError {
		t.Fatalf("parsed = %+v, ok = %v", parsed, ok)
	}
	if parsed.remote.Code != "unknown" {
		t.Errorf("code = %q, want %q", parsed.remote.Code, "unknown")
	}
}
