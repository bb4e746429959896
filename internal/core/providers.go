package core

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned by data collaborators when no principal is
// associated with the request. Distinct from an empty result.
var ErrUnauthenticated = errors.New("unauthenticated")

// BusinessStore is the customer/job/invoice query surface the assistant
// reads from. All queries are scoped to an account and read-only.
type BusinessStore interface {
	// SearchCustomers does a case-insensitive partial name match, capped at 5 results.
	SearchCustomers(ctx context.Context, accountID, query string) ([]Customer, error)
	// LatestJob returns the most recent job for a customer, or nil when none exists.
	LatestJob(ctx context.Context, customerID string) (*Job, error)
	// OverdueInvoices returns the account's overdue invoices ordered by due date ascending.
	OverdueInvoices(ctx context.Context, accountID string) ([]OverdueInvoice, error)
}

// ContextReader supplies the account snapshot for AI fallback requests.
// Implementations return a safe zeroed default instead of an error when the
// account is unknown or unauthenticated.
type ContextReader interface {
	AccountContext(ctx context.Context, accountID string) (UserContext, error)
}

type CompletionRequest struct {
	Message string      `json:"message"`
	Context UserContext `json:"context"`
	History []Message   `json:"history"`
}

type CompletionResult struct {
	Response     string   `json:"response"`
	QuickReplies []string `json:"quickReplies,omitempty"`
}

// Completer is the remote text-completion service. Any transport failure or
// non-2xx status surfaces as an error the caller must treat as recoverable.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
