package assistant

import (
	"strconv"
	"strings"
)

const helpCenterURL = "https://help.bidbot.dev"
const tutorialURL = "https://help.bidbot.dev/getting-started"

var greetings = []string{
	"Hey there! What can I help you with today?",
	"Hi! Ready to get some work done? I can help with jobs, invoices, and customers.",
	"Hello! What would you like to take care of first?",
	"Hey! I'm here to help you run the business. What do you need?",
}

// standardQuickReplies is the default chip set attached to greetings,
// AI fallbacks, and anything else without a more specific suggestion.
var standardQuickReplies = []string{
	"Create a new job",
	"Check overdue invoices",
	"Show my customers",
	"Help",
}

var helpQuickReplies = []string{
	"How do proposals work?",
	"How do invoices work?",
	"How do payments work?",
	"What can the AI do?",
}

const rateLimitedText = "You've sent quite a few messages in a short time. " +
	"Give it a little while and I'll be ready to help again."

const aiFallbackText = "Sorry, I'm having trouble answering that right now. " +
	"Try rephrasing, or use one of the suggestions below."

const notUnderstoodText = "I didn't quite catch that. " +
	"I can help with jobs, invoices, and customers — try one of the suggestions below."

const lookupTroubleText = "I had trouble looking that up just now. " +
	"You can view it manually while I get back on my feet."

const loginRequiredText = "Please log in so I can look at your account data."

// helpTopics are checked in order against the raw utterance; first hit wins.
var helpTopics = []struct {
	keyword string
	text    string
}{
	{"proposal", "Proposals let you quote a job before committing to it. " +
		"Create one from the job page, add line items and a price, then send it to the customer " +
		"for approval. Once accepted you can convert it into a scheduled job with one tap."},
	{"invoice", "Invoices are generated from completed jobs or built from scratch. " +
		"Add line items, set a due date, and send — your customer gets a payment link by text or email. " +
		"I can also chase overdue ones for you if you ask me to."},
	{"payment", "Payments are collected through the payment link on every invoice. " +
		"Your customer pays by card or bank transfer and the invoice is marked paid automatically. " +
		"Payouts land in your connected bank account."},
	{"ai", "I can create jobs and invoices, look up job status, find overdue invoices, " +
		"and answer questions about the app. Anything I can't handle with my built-in shortcuts " +
		"I pass along to a smarter model."},
}

const generalHelpText = "Here's what I can do:\n" +
	"• Create jobs and proposals\n" +
	"• Create and send invoices\n" +
	"• Check the status of a job\n" +
	"• Find overdue invoices and total what you're owed\n" +
	"• Pull up your customer list\n\n" +
	"Just tell me what you need in plain words."

// formatMoney renders a dollar amount with comma grouping, e.g. "$1,250.00".
func formatMoney(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("$")
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(d)
	}
	b.WriteString(".")
	b.WriteString(cents)
	return b.String()
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

var statusEmoji = map[string]string{
	"pending":     "⏳",
	"scheduled":   "📅",
	"in_progress": "🔄",
	"completed":   "✅",
	"cancelled":   "❌",
}

func jobStatusEmoji(status string) string {
	if e, ok := statusEmoji[status]; ok {
		return e
	}
	return "📋"
}

// statusText turns a stored job status like "in_progress" into display form.
func statusText(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
