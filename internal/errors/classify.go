package errors

import (
	"errors"
	"strings"
)

// FailureKind identifies the bucket a turn-level failure falls into.
type FailureKind int

// Failure kinds, in classification precedence order.
const (
	KindUnknown FailureKind = iota
	KindPromptBlocked
	KindSafety
	KindRecitation
	KindNoContent
	KindForbidden
	KindQuota
	KindServerError
	KindUnavailable
	KindNetwork
)

// TurnFailure is the classified, user-facing form of a failed turn: a short
// emoji-tagged headline plus a longer human-readable reason.
type TurnFailure struct {
	Kind     FailureKind
	Headline string
	Reason   string
}

// Render formats the failure as the text of an assistant message.
func (f *TurnFailure) Render() string {
	return f.Headline + "\n\n🔍 Reason: " + f.Reason
}

const rawMessageLimit = 100

// Classify maps a raw generation failure onto the turn-failure taxonomy.
// Checks run in a fixed precedence order; the first match wins.
func Classify(err error) *TurnFailure {
	if err == nil {
		return nil
	}

	msg := err.Error()
	status := statusCode(err)

	switch {
	case strings.Contains(msg, MarkerPromptBlocked):
		return &TurnFailure{
			Kind:     KindPromptBlocked,
			Headline: "🛑 Prompt rejected",
			Reason:   "The API blocked the prompt before generation (PROMPT_BLOCKED).",
		}
	case strings.Contains(msg, MarkerSafety):
		return &TurnFailure{
			Kind:     KindSafety,
			Headline: "🚫 Content blocked",
			Reason:   "The API returned FINISH_SAFETY; the safety filter rejected the output.",
		}
	case strings.Contains(msg, MarkerRecitation) || strings.Contains(msg, "copyright"):
		return &TurnFailure{
			Kind:     KindRecitation,
			Headline: "©️ Copyright restriction",
			Reason:   "The API returned FINISH_RECITATION; potentially copyrighted content was detected.",
		}
	case strings.Contains(msg, MarkerNoContent):
		return &TurnFailure{
			Kind:     KindNoContent,
			Headline: "❓ Generation failed (empty response)",
			Reason:   "The call succeeded but returned no usable content; the model may be temporarily unable to handle this request.",
		}
	case status == 403 || strings.Contains(msg, "403"):
		return &TurnFailure{
			Kind:     KindForbidden,
			Headline: "❌ Permission denied (403)",
			Reason:   "The API key is invalid, expired, or not allowed to access this model.",
		}
	case status == 429 || strings.Contains(msg, "429") || strings.Contains(msg, "Quota exceeded"):
		return &TurnFailure{
			Kind:     KindQuota,
			Headline: "⚠️ Quota exhausted (429)",
			Reason:   "Requests are arriving too fast and hit the quota limit. Try again later.",
		}
	case status == 500 || strings.Contains(msg, "500"):
		return &TurnFailure{
			Kind:     KindServerError,
			Headline: "🔥 Server error (500)",
			Reason:   "The remote service hit an internal error.",
		}
	case status == 503 || strings.Contains(msg, "503"):
		return &TurnFailure{
			Kind:     KindUnavailable,
			Headline: "🐌 Service busy (503)",
			Reason:   "The remote service is temporarily unavailable, likely under heavy load.",
		}
	case isNetworkError(err):
		return &TurnFailure{
			Kind:     KindNetwork,
			Headline: "🌐 Network unreachable",
			Reason:   "Could not reach the API endpoint. Check your connection or proxy settings.",
		}
	default:
		short := msg
		if runes := []rune(short); len(runes) > rawMessageLimit {
			short = string(runes[:rawMessageLimit])
		}
		return &TurnFailure{
			Kind:     KindUnknown,
			Headline: "❌ Error: " + short,
			Reason:   "Raw error: " + msg,
		}
	}
}

// Categorize maps a raw per-request error string onto the coarse three-bucket
// category used in partial-failure summary notes.
func Categorize(raw string) string {
	switch {
	case strings.Contains(raw, "SAFETY"):
		return "content blocked"
	case strings.Contains(raw, "RECITATION"):
		return "copyright restriction"
	default:
		return "unknown error"
	}
}

func statusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func isNetworkError(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	// Transport errors from other stacks surface as plain strings.
	msg := err.Error()
	return strings.Contains(msg, "network unreachable") || strings.Contains(msg, "fetch failed")
}
