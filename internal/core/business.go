package core

import "time"

type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Job struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

// OverdueInvoice is the joined row the overdue report needs: the invoice
// total plus the customer's display name.
type OverdueInvoice struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Total        float64   `json:"total"`
	DueDate      time.Time `json:"due_date"`
}

type Activity struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// UserContext is a read-only account snapshot sent along with AI fallback
// requests. Fetched fresh per call, never cached by the engine.
type UserContext struct {
	BusinessName    string     `json:"business_name"`
	CurrentPage     string     `json:"current_page,omitempty"`
	ActiveJobs      int        `json:"active_jobs"`
	PendingInvoices int        `json:"pending_invoices"`
	OverdueInvoices int        `json:"overdue_invoices"`
	RecentActivity  []Activity `json:"recent_activity,omitempty"`
}
