package ui

import (
	"surgehost/internal/diagnostics"
	"surgehost/internal/editor"
)

// Publisher forwards pipeline results into the TUI event channel. It
// satisfies the pipeline's Publisher interface.
type Publisher struct {
	events chan<- Event
}

// NewPublisher returns a Publisher writing to events.
func NewPublisher(events chan<- Event) *Publisher {
	return &Publisher{events: events}
}

// Publish replaces the diagnostics shown for the document.
func (p *Publisher) Publish(uri string, diags []diagnostics.Diagnostic) {
	path := editor.URIToPath(uri)
	if path == "" {
		path = uri
	}
	p.events <- Event{Kind: EventPublish, Path: path, Diags: diags}
}

// ClearAll drops every shown diagnostic.
func (p *Publisher) ClearAll() {
	p.events <- Event{Kind: EventClearAll}
}

// Warn surfaces a host-level warning in the TUI.
func (p *Publisher) Warn(message string) {
	p.events <- Event{Kind: EventWarn, Message: message}
}
