package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
)

// searchLimit caps customer name search results.
const searchLimit = 5

// activityLimit caps the recent-activity slice in the account snapshot.
const activityLimit = 5

// BusinessRepo is the read-only query surface the assistant uses: customer
// search, latest job, overdue invoices, and the account snapshot.
type BusinessRepo struct {
	db *sql.DB
}

func NewBusinessRepo(db *sql.DB) *BusinessRepo {
	return &BusinessRepo{db: db}
}

func (r *BusinessRepo) SearchCustomers(ctx context.Context, accountID, query string) ([]core.Customer, error) {
	if accountID == "" {
		return nil, core.ErrUnauthenticated
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM customers
		 WHERE account_id = ? AND lower(name) LIKE '%' || lower(?) || '%'
		 ORDER BY name LIMIT ?`,
		accountID, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *BusinessRepo) LatestJob(ctx context.Context, customerID string) (*core.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, title, status, price, created_at FROM jobs
		 WHERE customer_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		customerID)

	var job core.Job
	err := row.Scan(&job.ID, &job.CustomerID, &job.Title, &job.Status, &job.Price, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest job: %w", err)
	}
	return &job, nil
}

func (r *BusinessRepo) OverdueInvoices(ctx context.Context, accountID string) ([]core.OverdueInvoice, error) {
	if accountID == "" {
		return nil, core.ErrUnauthenticated
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT i.id, c.name, i.total, i.due_date
		 FROM invoices i
		 JOIN customers c ON c.id = i.customer_id
		 WHERE i.account_id = ?
		   AND i.status NOT IN ('paid', 'cancelled')
		   AND i.due_date IS NOT NULL
		   AND i.due_date < ?
		 ORDER BY i.due_date ASC`,
		accountID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.OverdueInvoice
	for rows.Next() {
		var inv core.OverdueInvoice
		if err := rows.Scan(&inv.ID, &inv.CustomerName, &inv.Total, &inv.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// AccountContext assembles the snapshot sent along with AI fallback
// requests. An unauthenticated caller gets a zeroed default, not an error.
func (r *BusinessRepo) AccountContext(ctx context.Context, accountID string) (core.UserContext, error) {
	userCtx := core.UserContext{BusinessName: "your business"}
	if accountID == "" {
		return userCtx, nil
	}

	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT business_name FROM accounts WHERE id = ?`, accountID).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return userCtx, nil
	case err != nil:
		return userCtx, fmt.Errorf("failed to query account: %w", err)
	}
	userCtx.BusinessName = name

	err = r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM jobs
		    WHERE account_id = ? AND status IN ('pending', 'scheduled', 'in_progress')),
		   (SELECT COUNT(*) FROM invoices
		    WHERE account_id = ? AND status = 'pending'),
		   (SELECT COUNT(*) FROM invoices
		    WHERE account_id = ? AND status NOT IN ('paid', 'cancelled')
		      AND due_date IS NOT NULL AND due_date < ?)`,
		accountID, accountID, accountID, time.Now().UTC()).
		Scan(&userCtx.ActiveJobs, &userCtx.PendingInvoices, &userCtx.OverdueInvoices)
	if err != nil {
		return userCtx, fmt.Errorf("failed to query account counts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, description, occurred_at FROM activity
		 WHERE account_id = ?
		 ORDER BY occurred_at DESC LIMIT ?`,
		accountID, activityLimit)
	if err != nil {
		return userCtx, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.Activity
		if err := rows.Scan(&a.Kind, &a.Description, &a.OccurredAt); err != nil {
			return userCtx, fmt.Errorf("failed to scan activity: %w", err)
		}
		userCtx.RecentActivity = append(userCtx.RecentActivity, a)
	}
	if err := rows.Err(); err != nil {
		return userCtx, err
	}

	log.FromCtx(ctx).Debug().
		Str("account", accountID).
		Int("active_jobs", userCtx.ActiveJobs).
		Msg("loaded account context")
	return userCtx, nil
}
