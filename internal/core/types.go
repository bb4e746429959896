package core

import "time"

const (
	AppName       = "BidBot"
	AppUserAgent  = "BidBot-Assistant/0.1"
	RepositoryURL = "https://github.com/sandevgo/bidbot"
	AppVersion    = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Source marks where an assistant message came from: local rule templates
// or the remote completion service.
const (
	SourceRule = "rule"
	SourceAI   = "ai"
)

// Action kinds. The engine only emits actions; the host UI executes them.
const (
	ActionNavigate = "navigate"
	ActionFunction = "function"
	ActionExternal = "external"
)

type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Message is one turn in a conversation. Immutable once created.
type Message struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Intent       string    `json:"intent,omitempty"`
	Actions      []Action  `json:"actions,omitempty"`
	QuickReplies []string  `json:"quick_replies,omitempty"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
