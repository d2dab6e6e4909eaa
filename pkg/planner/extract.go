package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrNoJSONList is the fixed message surfaced when the model output carries no
// bracket-delimited span.
const ErrNoJSONList = "No valid JSON list found in response."

// Extract pulls the move plan out of a free-text model reply.
//
// The span runs from the FIRST '[' to the LAST ']' in the text, deliberately
// greedy: prose between multiple arrays stays inside the span and fails JSON
// parsing rather than silently picking one array. The validated span is
// returned verbatim, without decoding into a schema, so whatever JSON value
// the model produced round-trips to the caller unchanged.
func Extract(response string) (json.RawMessage, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")

	if start == -1 || end == -1 || start >= end {
		return nil, NewError(KindExtraction, ErrNoJSONList)
	}

	candidate := response[start : end+1]

	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, NewErrorWithCause(KindParse, err, fmt.Sprintf("extracted span is not valid JSON: %v", err))
	}

	return json.RawMessage(candidate), nil
}

// DecodePlan decodes an extracted span into move plan entries and validates
// them. This is the strict layer behind the planner.strict config flag; the
// default lenient mode returns the raw span from Extract untouched.
func DecodePlan(raw json.RawMessage) ([]MovePlanEntry, error) {
	var entries []MovePlanEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, NewErrorWithCause(KindValidation, err, fmt.Sprintf("plan is not an array of move entries: %v", err))
	}

	for i := range entries {
		e := &entries[i]
		if e.Source == "" {
			return nil, NewError(KindValidation, fmt.Sprintf("plan entry %d has empty source", i))
		}
		if e.Destination == "" {
			return nil, NewError(KindValidation, fmt.Sprintf("plan entry %d has empty destination", i))
		}
		if strings.Contains(e.Destination, `\`) {
			return nil, NewError(KindValidation, fmt.Sprintf("plan entry %d destination contains backslashes: %s", i, e.Destination))
		}
	}

	return entries, nil
}
