package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/bidbot/internal/core"
)

func actionLabels(actions []core.Action) []string {
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	return labels
}

func hasAction(actions []core.Action, label, value string) bool {
	for _, a := range actions {
		if a.Label == label && a.Value == value {
			return true
		}
	}
	return false
}

func TestCreateJobActions(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "create new job")

	if msg.Intent != IntentCreateJob {
		t.Fatalf("intent = %q", msg.Intent)
	}
	if len(msg.Actions) != 2 {
		t.Fatalf("actions = %v, want exactly 2", actionLabels(msg.Actions))
	}
	for _, a := range msg.Actions {
		if a.Type != core.ActionNavigate {
			t.Errorf("action %q type = %q, want navigate", a.Label, a.Type)
		}
	}
	if msg.Actions[0].Value != "/jobs/new" {
		t.Errorf("first action value = %q, want /jobs/new", msg.Actions[0].Value)
	}
	if msg.Actions[1].Value != "/jobs/new?voice=true" {
		t.Errorf("second action value = %q, want /jobs/new?voice=true", msg.Actions[1].Value)
	}
}

func TestCreateInvoiceActions(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "create an invoice")

	if msg.Intent != IntentCreateInvoice {
		t.Fatalf("intent = %q", msg.Intent)
	}
	if !hasAction(msg.Actions, "New Invoice", "/invoices/new") {
		t.Errorf("missing New Invoice action, got %v", msg.Actions)
	}
	if !hasAction(msg.Actions, "View Invoices", "/invoices") {
		t.Errorf("missing View Invoices action, got %v", msg.Actions)
	}
}

func TestCheckStatus_NoEntity(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "check job status")

	if !strings.Contains(msg.Content, "Which customer") {
		t.Errorf("content = %q, want clarifying question", msg.Content)
	}
	if !hasAction(msg.Actions, "View Jobs", "/jobs") || !hasAction(msg.Actions, "View Customers", "/customers") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckStatus_SingleMatch(t *testing.T) {
	started := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	store := &stubStore{
		searchFn: func(_, query string) ([]core.Customer, error) {
			if query != "Jane Doe" {
				t.Errorf("search query = %q, want Jane Doe", query)
			}
			return []core.Customer{{ID: "c1", Name: "Jane Doe"}}, nil
		},
		latestFn: func(customerID string) (*core.Job, error) {
			if customerID != "c1" {
				t.Errorf("customer id = %q", customerID)
			}
			return &core.Job{
				ID: "j1", CustomerID: "c1", Title: "Deck rebuild",
				Status: "in_progress", Price: 4800, CreatedAt: started,
			}, nil
		},
	}
	e := newTestEngine(store, nil)

	msg := e.HandleMessage(context.Background(), "check the job for Jane Doe")

	if !strings.Contains(msg.Content, "🔄") {
		t.Errorf("content missing in-progress marker: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "Deck rebuild") {
		t.Errorf("content missing job title: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "$4,800.00") {
		t.Errorf("content missing price: %q", msg.Content)
	}
	if !hasAction(msg.Actions, "View Job Details", "/jobs/j1") {
		t.Errorf("missing View Job Details action: %v", msg.Actions)
	}
	if !hasAction(msg.Actions, "Create Invoice", "/invoices/new?job=j1") {
		t.Errorf("missing Create Invoice action: %v", msg.Actions)
	}
}

func TestCheckStatus_SingleMatchNoJobs(t *testing.T) {
	store := &stubStore{
		searchFn: func(_, _ string) ([]core.Customer, error) {
			return []core.Customer{{ID: "c7", Name: "Sam Field"}}, nil
		},
	}
	e := newTestEngine(store, nil)

	msg := e.HandleMessage(context.Background(), "check the job for Sam")

	if !strings.Contains(msg.Content, "doesn't have any jobs") {
		t.Errorf("content = %q", msg.Content)
	}
	if !hasAction(msg.Actions, "Create Job", "/jobs/new?customer=c7") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckStatus_NoMatch(t *testing.T) {
	e := newTestEngine(&stubStore{}, nil)
	msg := e.HandleMessage(context.Background(), "check the job for Nobody Real")

	if !strings.Contains(msg.Content, "couldn't find") {
		t.Errorf("content = %q", msg.Content)
	}
	if !hasAction(msg.Actions, "Add Customer", "/customers/new") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckStatus_MultipleMatches(t *testing.T) {
	store := &stubStore{
		searchFn: func(_, _ string) ([]core.Customer, error) {
			return []core.Customer{
				{ID: "c1", Name: "John Smith"},
				{ID: "c2", Name: "John Porter"},
				{ID: "c3", Name: "Johnny Cole"},
			}, nil
		},
	}
	e := newTestEngine(store, nil)

	msg := e.HandleMessage(context.Background(), "check the job for John")

	for _, name := range []string{"John Smith", "John Porter", "Johnny Cole"} {
		if !strings.Contains(msg.Content, "• "+name) {
			t.Errorf("content missing bullet for %s: %q", name, msg.Content)
		}
	}
	if !hasAction(msg.Actions, "View All Customers", "/customers") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckStatus_LookupFailure(t *testing.T) {
	store := &stubStore{
		searchFn: func(_, _ string) ([]core.Customer, error) {
			return nil, errors.New("db locked")
		},
	}
	e := newTestEngine(store, nil)

	msg := e.HandleMessage(context.Background(), "check the job for Jane")

	if msg.Content != lookupTroubleText {
		t.Errorf("content = %q, want generic lookup trouble", msg.Content)
	}
	if !hasAction(msg.Actions, "View Jobs", "/jobs") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckStatus_Unauthenticated(t *testing.T) {
	store := &stubStore{
		searchFn: func(_, _ string) ([]core.Customer, error) {
			return nil, core.ErrUnauthenticated
		},
	}
	e := newTestEngine(store, nil)

	msg := e.HandleMessage(context.Background(), "check the job for Jane")

	if msg.Content != loginRequiredText {
		t.Errorf("content = %q, want login prompt", msg.Content)
	}
	if !hasAction(msg.Actions, "Log In", "/login") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckOverdue_Empty(t *testing.T) {
	e := newTestEngine(&stubStore{}, nil)
	msg := e.HandleMessage(context.Background(), "any overdue invoices")

	if !strings.Contains(msg.Content, "🎉") {
		t.Errorf("content = %q, want congratulation", msg.Content)
	}
	if len(msg.Actions) != 0 {
		t.Errorf("actions = %v, want none", msg.Actions)
	}
}

func TestCheckOverdue_SevenInvoices(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	invoices := []core.OverdueInvoice{
		{ID: "i1", CustomerName: "Jane", Total: 200, DueDate: now.AddDate(0, 0, -30)},
		{ID: "i2", CustomerName: "Bob", Total: 150, DueDate: now.AddDate(0, 0, -21)},
		{ID: "i3", CustomerName: "Ann", Total: 300, DueDate: now.AddDate(0, 0, -14)},
		{ID: "i4", CustomerName: "Raj", Total: 100, DueDate: now.AddDate(0, 0, -10)},
		{ID: "i5", CustomerName: "Lee", Total: 250, DueDate: now.AddDate(0, 0, -7)},
		{ID: "i6", CustomerName: "Kim", Total: 150, DueDate: now.AddDate(0, 0, -3)},
		{ID: "i7", CustomerName: "Pat", Total: 100, DueDate: now.AddDate(0, 0, -1)},
	}
	store := &stubStore{
		overdueFn: func(string) ([]core.OverdueInvoice, error) { return invoices, nil },
	}
	e := newTestEngine(store, nil)
	e.now = func() time.Time { return now }

	msg := e.HandleMessage(context.Background(), "what's overdue")

	if !strings.Contains(msg.Content, "7 overdue invoices totaling $1,250.00") {
		t.Errorf("content = %q, want total line", msg.Content)
	}
	for _, name := range []string{"Jane", "Bob", "Ann", "Raj", "Lee"} {
		if !strings.Contains(msg.Content, "• "+name) {
			t.Errorf("content missing line for %s", name)
		}
	}
	for _, name := range []string{"Kim", "Pat"} {
		if strings.Contains(msg.Content, "• "+name) {
			t.Errorf("content lists %s beyond the 5-item cap", name)
		}
	}
	if !strings.Contains(msg.Content, "...and 2 more") {
		t.Errorf("content missing overflow suffix: %q", msg.Content)
	}
	if !strings.Contains(msg.Content, "Jane — $200.00 (30 days overdue)") {
		t.Errorf("content = %q, want formatted first line", msg.Content)
	}
	if !hasAction(msg.Actions, "View Overdue Invoices", "/invoices?filter=overdue") {
		t.Errorf("actions = %v", msg.Actions)
	}
	if !hasAction(msg.Actions, "Send Reminders", "send_overdue_reminders") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestCheckOverdue_DaysFloored(t *testing.T) {
	now := time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)
	store := &stubStore{
		overdueFn: func(string) ([]core.OverdueInvoice, error) {
			// 2.75 days ago floors to 2
			return []core.OverdueInvoice{
				{ID: "i1", CustomerName: "Jane", Total: 50, DueDate: now.Add(-66 * time.Hour)},
			}, nil
		},
	}
	e := newTestEngine(store, nil)
	e.now = func() time.Time { return now }

	msg := e.HandleMessage(context.Background(), "unpaid invoices")
	if !strings.Contains(msg.Content, "(2 days overdue)") {
		t.Errorf("content = %q, want floored whole days", msg.Content)
	}
	if !strings.Contains(msg.Content, "1 overdue invoice totaling $50.00") {
		t.Errorf("content = %q, want singular form", msg.Content)
	}
}

func TestListCustomers(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "show all customers")

	if msg.Intent != IntentListCustomers {
		t.Fatalf("intent = %q", msg.Intent)
	}
	if !hasAction(msg.Actions, "View Customers", "/customers") || !hasAction(msg.Actions, "Add Customer", "/customers/new") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestSendInvoice(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "send invoice")

	if msg.Intent != IntentSendInvoice {
		t.Fatalf("intent = %q", msg.Intent)
	}
	if !hasAction(msg.Actions, "View Invoices", "/invoices") {
		t.Errorf("actions = %v", msg.Actions)
	}
}

func TestHelp_Topics(t *testing.T) {
	e := newTestEngine(nil, nil)

	tests := []struct {
		input   string
		keyword string
	}{
		{"how do proposals work", "Proposals"},
		{"how does an invoice work", "Invoices"},
		{"help with payment", "Payments"},
		{"how does the ai work", "I can create"},
	}
	for _, tt := range tests {
		msg := e.HandleMessage(context.Background(), tt.input)
		if msg.Intent != IntentHelp {
			t.Errorf("%q intent = %q, want help", tt.input, msg.Intent)
			continue
		}
		if !strings.Contains(msg.Content, tt.keyword) {
			t.Errorf("%q content = %q, want topic answer", tt.input, msg.Content)
		}
		if !hasAction(msg.Actions, "Help Center", helpCenterURL) {
			t.Errorf("%q actions = %v", tt.input, msg.Actions)
		}
	}
}

func TestHelp_General(t *testing.T) {
	e := newTestEngine(nil, nil)
	msg := e.HandleMessage(context.Background(), "help")

	if !strings.Contains(msg.Content, "Here's what I can do") {
		t.Errorf("content = %q, want capability summary", msg.Content)
	}
	if !hasAction(msg.Actions, "Watch Tutorial", tutorialURL) {
		t.Errorf("actions = %v", msg.Actions)
	}
	if len(msg.QuickReplies) != len(helpQuickReplies) {
		t.Errorf("quick replies = %v", msg.QuickReplies)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{50, "$50.00"},
		{1250, "$1,250.00"},
		{1250.5, "$1,250.50"},
		{999999.99, "$999,999.99"},
		{1234567.89, "$1,234,567.89"},
		{-42.5, "-$42.50"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
