package assistant

import "strings"

// Intent labels.
const (
	IntentGreeting      = "greeting"
	IntentCreateJob     = "create-job"
	IntentCreateInvoice = "create-invoice"
	IntentCheckStatus   = "check-status"
	IntentCheckOverdue  = "check-overdue"
	IntentListCustomers = "list-customers"
	IntentSendInvoice   = "send-invoice"
	IntentHelp          = "help"
	IntentUnknown       = "unknown"
)

// Confidence tiers. Low is used if and only if the intent is unknown.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Intent is the classification result for a single utterance. Entity is only
// populated for check-status, where it carries the customer name parsed out
// of the message.
type Intent struct {
	Name       string
	Confidence string
	Entity     string
}

// intentRule is one guard clause of the classifier. Rules run in declaration
// order against the lowercased input and the first match wins.
type intentRule struct {
	name  string
	match func(s string) bool
}

var intentRules = []intentRule{
	{IntentCreateJob, func(s string) bool {
		return containsAny(s, "create", "new", "start") && containsAny(s, "job", "proposal")
	}},
	{IntentCreateInvoice, func(s string) bool {
		return containsAny(s, "create", "new", "start") && strings.Contains(s, "invoice")
	}},
	{IntentCheckStatus, func(s string) bool {
		return containsAny(s, "status", "check", "find") && containsAny(s, "job", "proposal")
	}},
	{IntentSendInvoice, func(s string) bool {
		return strings.Contains(s, "send") && strings.Contains(s, "invoice")
	}},
	{IntentCheckOverdue, func(s string) bool {
		return containsAny(s, "overdue", "unpaid", "owe")
	}},
	{IntentListCustomers, func(s string) bool {
		return strings.Contains(s, "customer") && containsAny(s, "list", "show", "all")
	}},
	{IntentHelp, func(s string) bool {
		return containsAny(s, "how", "help", "guide") || strings.Contains(s, "?")
	}},
	{IntentGreeting, func(s string) bool {
		return containsAny(s, "hello", "hi", "hey")
	}},
}

// ClassifyIntent matches the utterance against the ordered rule table.
// Pure string work, never fails, empty input classifies as unknown.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if !rule.match(lower) {
			continue
		}
		intent := Intent{Name: rule.name, Confidence: ConfidenceHigh}
		if rule.name == IntentCheckStatus {
			intent.Entity = extractEntity(text, lower)
		}
		return intent
	}
	return Intent{Name: IntentUnknown, Confidence: ConfidenceLow}
}

// entityPrepositions introduce the customer name in a status question,
// e.g. "check the job for Jane Doe".
var entityPrepositions = []string{" for ", " from ", " with ", " about "}

// extractEntity takes everything after the first preposition, preserving the
// original casing, with trailing punctuation stripped. Empty string when no
// preposition is present.
func extractEntity(text, lower string) string {
	for _, prep := range entityPrepositions {
		idx := strings.Index(lower, prep)
		if idx < 0 {
			continue
		}
		entity := strings.TrimSpace(text[idx+len(prep):])
		entity = strings.TrimRight(entity, ".,!?;:")
		return strings.TrimSpace(entity)
	}
	return ""
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
