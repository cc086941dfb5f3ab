package analysis

import (
	"stockwatch/models"
)

// LogSink receives log entries from models. Satisfied by the queued
// log subsystem; tests supply their own.
type LogSink interface {
	Queue(entry models.LogEntry)
}

// Model is a technical-analysis model evaluated against one stock.
// History is ordered most-recent-first and excludes today's session;
// the quote carries today's price and volume. A model that fires
// returns the subject and body for the alert email.
//
// Models keep their own per-symbol notified state so a condition that
// persists across cycles alerts only once until it resets.
type Model interface {
	Name() string
	Evaluate(stock *models.Stock, history []*models.ClosingPrice, quote *models.Quote) (fired bool, subject string, body string)
}

// Alert is one positive model signal for a stock.
type Alert struct {
	Model   string
	Subject string
	Body    string
}

// Registry holds the enabled models and evaluates them in
// registration order.
type Registry struct {
	models []Model
}

// NewRegistry creates a registry over the given models.
func NewRegistry(enabled ...Model) *Registry {
	return &Registry{models: enabled}
}

// Register appends a model to the evaluation order.
func (r *Registry) Register(m Model) {
	r.models = append(r.models, m)
}

// Len reports the number of registered models.
func (r *Registry) Len() int {
	return len(r.models)
}

// EvaluateAll runs every registered model against the stock and
// returns the alerts that fired, in registration order.
func (r *Registry) EvaluateAll(stock *models.Stock, history []*models.ClosingPrice, quote *models.Quote) []Alert {
	var alerts []Alert
	for _, m := range r.models {
		fired, subject, body := m.Evaluate(stock, history, quote)
		if fired {
			alerts = append(alerts, Alert{Model: m.Name(), Subject: subject, Body: body})
		}
	}
	return alerts
}
