package history

import (
	"context"
	"time"

	"shelfguard-hq/shelfguard/pkg/policy/rules"
	"shelfguard-hq/shelfguard/pkg/suggest"
)

// Run is one persisted comparison run.
type Run struct {
	// ID is the run identifier, a UUID assigned by the pipeline.
	ID string `json:"run_id"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at"`

	// Market and Categories are the policy selection inputs.
	Market     string   `json:"market"`
	Categories []string `json:"categories,omitempty"`

	// ClientSKU and CompetitorSKU identify the compared listings.
	ClientSKU     string `json:"client_sku"`
	CompetitorSKU string `json:"competitor_sku"`

	// Errors and Warnings count failed findings on the client listing
	// by severity. Approved is true when Errors is zero.
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Approved bool `json:"approved"`

	// Findings holds the client listing's findings.
	Findings []rules.Finding `json:"findings,omitempty"`

	// Suggestions holds the produced edits.
	Suggestions []suggest.Recommendation `json:"suggestions,omitempty"`

	// Report is the rendered markdown document.
	Report string `json:"report,omitempty"`
}

// Store persists comparison runs.
type Store interface {
	// Save persists one run. Returns an error if the write fails.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrRunNotFound when absent.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns the most recent runs, newest first, up to limit.
	// A limit of zero or less applies the store default.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases store resources.
	Close() error
}
