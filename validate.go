package qanything

import (
	"fmt"
	"strconv"
)

// Severity indicates how serious a validation warning is.
type Severity string

const (
	SeverityInfo    Severity = "info"    // Informational (might be expected)
	SeverityWarning Severity = "warning" // Potentially problematic
)

// WarningCode is a machine-readable identifier for validation warnings.
type WarningCode string

const (
	WarningCodeModelUnknown          WarningCode = "MODEL_UNKNOWN"
	WarningCodeMaxTokenOutOfRange    WarningCode = "MAX_TOKEN_OUT_OF_RANGE"
	WarningCodeNetworkingUnsupported WarningCode = "NETWORKING_UNSUPPORTED"
	WarningCodeHistoryIncomplete     WarningCode = "HISTORY_INCOMPLETE"
)

// ValidationWarning represents a potential issue with a request that the
// remote API may reject or silently clamp. These are informational: hard
// preconditions live in the requests' Validate methods, and the remote API
// remains the source of truth for everything else.
type ValidationWarning struct {
	Code     WarningCode // Machine-readable code
	Field    string      // Field that might cause issues
	Value    any         // The potentially problematic value
	Message  string      // Human-readable warning
	Severity Severity
}

// GetValidationWarnings inspects a knowledge-base chat request against the
// model catalog. Callers can surface warnings in a UI or ignore them; the
// client never blocks a request over a warning.
func GetValidationWarnings(req *KnowledgeBaseChatRequest) []ValidationWarning {
	var warnings []ValidationWarning
	registry := GetModelRegistry()

	info, err := registry.GetModelInfo(req.Model)
	if err != nil {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeModelUnknown,
			Field:    "model",
			Value:    req.Model,
			Message:  fmt.Sprintf("Model %q not found in the catalog (catalog may be outdated)", req.Model),
			Severity: SeverityWarning,
		})
		return append(warnings, historyWarnings(req.History)...)
	}

	if maxToken, err := strconv.Atoi(req.MaxToken); err == nil {
		if maxToken <= 0 || maxToken > info.MaxToken {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeMaxTokenOutOfRange,
				Field:    "maxToken",
				Value:    req.MaxToken,
				Message:  fmt.Sprintf("maxToken %d outside 1..%d for model %q", maxToken, info.MaxToken, req.Model),
				Severity: SeverityWarning,
			})
		}
	}

	if req.Networking.Bool() && !info.Features.Networking {
		warnings = append(warnings, ValidationWarning{
			Code:     WarningCodeNetworkingUnsupported,
			Field:    "networking",
			Value:    req.Networking,
			Message:  fmt.Sprintf("Model %q might not support networking", req.Model),
			Severity: SeverityInfo,
		})
	}

	return append(warnings, historyWarnings(req.History)...)
}

// historyWarnings flags history turns that should never be on the wire:
// requests are supposed to carry completed turns only.
func historyWarnings(history History) []ValidationWarning {
	var warnings []ValidationWarning
	for i, m := range history {
		if m.Response == "" {
			warnings = append(warnings, ValidationWarning{
				Code:     WarningCodeHistoryIncomplete,
				Field:    "history",
				Value:    i,
				Message:  fmt.Sprintf("history turn %d has an empty response; incomplete turns should not be sent", i),
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}

// FilterWarningsBySeverity returns warnings matching the given severities.
func FilterWarningsBySeverity(warnings []ValidationWarning, severities ...Severity) []ValidationWarning {
	filtered := make([]ValidationWarning, 0)
	keep := make(map[Severity]bool)
	for _, s := range severities {
		keep[s] = true
	}

	for _, w := range warnings {
		if keep[w.Severity] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
