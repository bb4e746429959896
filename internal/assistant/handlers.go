package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
)

func (e *Engine) dispatch(ctx context.Context, intent Intent, text string) response {
	switch intent.Name {
	case IntentGreeting:
		return e.handleGreeting()
	case IntentCreateJob:
		return e.handleCreateJob()
	case IntentCreateInvoice:
		return e.handleCreateInvoice()
	case IntentCheckStatus:
		return e.handleCheckStatus(ctx, intent.Entity)
	case IntentCheckOverdue:
		return e.handleCheckOverdue(ctx)
	case IntentListCustomers:
		return e.handleListCustomers()
	case IntentSendInvoice:
		return e.handleSendInvoice()
	case IntentHelp:
		return e.handleHelp(text)
	default:
		return response{
			content:      notUnderstoodText,
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}
}

func (e *Engine) handleGreeting() response {
	return response{
		content:      greetings[e.pick(len(greetings))],
		quickReplies: standardQuickReplies,
		source:       core.SourceRule,
	}
}

func (e *Engine) handleCreateJob() response {
	return response{
		content: "Let's set up a new job. You can type the details in, or dictate them with voice input.",
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "Create Job", Value: "/jobs/new"},
			{Type: core.ActionNavigate, Label: "Create with Voice", Value: "/jobs/new?voice=true"},
		},
		quickReplies: []string{"Create an invoice", "Check a job status", "Help"},
		source:       core.SourceRule,
	}
}

func (e *Engine) handleCreateInvoice() response {
	return response{
		content: "Sure — let's get an invoice together. Start a new one, or pick a finished job to invoice from your list.",
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "New Invoice", Value: "/invoices/new"},
			{Type: core.ActionNavigate, Label: "View Invoices", Value: "/invoices"},
		},
		quickReplies: []string{"Check overdue invoices", "Create a new job", "Help"},
		source:       core.SourceRule,
	}
}

func (e *Engine) handleCheckStatus(ctx context.Context, entity string) response {
	if entity == "" {
		return response{
			content: "Which customer's job should I look up? Say something like \"check the job for Jane Doe\".",
			actions: []core.Action{
				{Type: core.ActionNavigate, Label: "View Jobs", Value: "/jobs"},
				{Type: core.ActionNavigate, Label: "View Customers", Value: "/customers"},
			},
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}

	customers, err := e.store.SearchCustomers(ctx, e.accountID, entity)
	if err != nil {
		return e.lookupFailure(ctx, err, core.Action{
			Type: core.ActionNavigate, Label: "View Jobs", Value: "/jobs",
		})
	}

	switch len(customers) {
	case 0:
		return response{
			content: fmt.Sprintf("I couldn't find a customer matching %q. Want to add them, or browse the list?", entity),
			actions: []core.Action{
				{Type: core.ActionNavigate, Label: "Add Customer", Value: "/customers/new"},
				{Type: core.ActionNavigate, Label: "View Customers", Value: "/customers"},
			},
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	case 1:
		return e.describeLatestJob(ctx, customers[0])
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d customers matching %q:\n", len(customers), entity)
		for _, c := range customers {
			fmt.Fprintf(&b, "• %s\n", c.Name)
		}
		b.WriteString("Which one did you mean?")
		return response{
			content: b.String(),
			actions: []core.Action{
				{Type: core.ActionNavigate, Label: "View All Customers", Value: "/customers"},
			},
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}
}

func (e *Engine) describeLatestJob(ctx context.Context, customer core.Customer) response {
	job, err := e.store.LatestJob(ctx, customer.ID)
	if err != nil {
		return e.lookupFailure(ctx, err, core.Action{
			Type: core.ActionNavigate, Label: "View Jobs", Value: "/jobs",
		})
	}
	if job == nil {
		return response{
			content: fmt.Sprintf("%s doesn't have any jobs yet. Want to create one?", customer.Name),
			actions: []core.Action{
				{Type: core.ActionNavigate, Label: "Create Job", Value: "/jobs/new?customer=" + customer.ID},
			},
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}

	content := fmt.Sprintf("%s %s — %s\nStatus: %s · started %s",
		jobStatusEmoji(job.Status),
		job.Title,
		formatMoney(job.Price),
		statusText(job.Status),
		job.CreatedAt.Format("Jan 2, 2006"),
	)
	return response{
		content: content,
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "View Job Details", Value: "/jobs/" + job.ID},
			{Type: core.ActionNavigate, Label: "Create Invoice", Value: "/invoices/new?job=" + job.ID},
		},
		quickReplies: standardQuickReplies,
		source:       core.SourceRule,
	}
}

// overdueListLimit caps how many line items the overdue roll-up renders.
const overdueListLimit = 5

func (e *Engine) handleCheckOverdue(ctx context.Context) response {
	invoices, err := e.store.OverdueInvoices(ctx, e.accountID)
	if err != nil {
		return e.lookupFailure(ctx, err, core.Action{
			Type: core.ActionNavigate, Label: "View Invoices", Value: "/invoices?filter=overdue",
		})
	}

	if len(invoices) == 0 {
		return response{
			content:      "🎉 Nothing overdue — every invoice is paid up or still within terms. Nice work!",
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}

	var total float64
	for _, inv := range invoices {
		total += inv.Total
	}

	now := e.now()
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d overdue %s totaling %s:\n",
		len(invoices), plural(len(invoices), "invoice", "invoices"), formatMoney(total))

	shown := invoices
	if len(shown) > overdueListLimit {
		shown = shown[:overdueListLimit]
	}
	for _, inv := range shown {
		days := int(now.Sub(inv.DueDate).Hours() / 24)
		fmt.Fprintf(&b, "• %s — %s (%d %s overdue)\n",
			inv.CustomerName, formatMoney(inv.Total), days, plural(days, "day", "days"))
	}
	if extra := len(invoices) - overdueListLimit; extra > 0 {
		fmt.Fprintf(&b, "...and %d more\n", extra)
	}

	return response{
		content: strings.TrimRight(b.String(), "\n"),
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "View Overdue Invoices", Value: "/invoices?filter=overdue"},
			{Type: core.ActionFunction, Label: "Send Reminders", Value: "send_overdue_reminders"},
		},
		quickReplies: standardQuickReplies,
		source:       core.SourceRule,
	}
}

func (e *Engine) handleListCustomers() response {
	return response{
		content: "Here's where your customers live. You can browse the full list or add someone new.",
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "View Customers", Value: "/customers"},
			{Type: core.ActionNavigate, Label: "Add Customer", Value: "/customers/new"},
		},
		quickReplies: []string{"Check a job status", "Check overdue invoices", "Help"},
		source:       core.SourceRule,
	}
}

func (e *Engine) handleSendInvoice() response {
	return response{
		content: "Which invoice would you like to send? Pick one from your list and I'll take it from there.",
		actions: []core.Action{
			{Type: core.ActionNavigate, Label: "View Invoices", Value: "/invoices"},
			{Type: core.ActionNavigate, Label: "New Invoice", Value: "/invoices/new"},
		},
		quickReplies: []string{"Check overdue invoices", "Create an invoice", "Help"},
		source:       core.SourceRule,
	}
}

func (e *Engine) handleHelp(text string) response {
	lower := strings.ToLower(text)
	for _, topic := range helpTopics {
		if strings.Contains(lower, topic.keyword) {
			return response{
				content: topic.text,
				actions: []core.Action{
					{Type: core.ActionExternal, Label: "Help Center", Value: helpCenterURL},
				},
				quickReplies: helpQuickReplies,
				source:       core.SourceRule,
			}
		}
	}
	return response{
		content: generalHelpText,
		actions: []core.Action{
			{Type: core.ActionExternal, Label: "Help Center", Value: helpCenterURL},
			{Type: core.ActionExternal, Label: "Watch Tutorial", Value: tutorialURL},
		},
		quickReplies: helpQuickReplies,
		source:       core.SourceRule,
	}
}

// lookupFailure converts a store error into degraded content. An
// unauthenticated condition gets a login prompt; everything else gets the
// generic "try viewing manually" response with the handler's escape hatch.
func (e *Engine) lookupFailure(ctx context.Context, err error, action core.Action) response {
	if errors.Is(err, core.ErrUnauthenticated) {
		return response{
			content: loginRequiredText,
			actions: []core.Action{
				{Type: core.ActionNavigate, Label: "Log In", Value: "/login"},
			},
			source: core.SourceRule,
		}
	}
	log.FromCtx(ctx).Error().Err(err).Msg("data lookup failed")
	return response{
		content:      lookupTroubleText,
		actions:      []core.Action{action},
		quickReplies: standardQuickReplies,
		source:       core.SourceRule,
	}
}
