package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for comparison run IDs.
	RunIDKey contextKey = "run_id"

	// MarketKey is the context key for the marketplace code of a run.
	MarketKey contextKey = "market"

	// SKUKey is the context key for the client SKU under evaluation.
	SKUKey contextKey = "sku"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithMarket adds a marketplace code to the context.
func WithMarket(ctx context.Context, market string) context.Context {
	return context.WithValue(ctx, MarketKey, market)
}

// GetMarket retrieves the marketplace code from the context.
func GetMarket(ctx context.Context) string {
	if market, ok := ctx.Value(MarketKey).(string); ok {
		return market
	}
	return ""
}

// WithSKU adds a SKU identifier to the context.
func WithSKU(ctx context.Context, sku string) context.Context {
	return context.WithValue(ctx, SKUKey, sku)
}

// GetSKU retrieves the SKU identifier from the context.
func GetSKU(ctx context.Context) string {
	if sku, ok := ctx.Value(SKUKey).(string); ok {
		return sku
	}
	return ""
}

// extractContextFields returns run-scoped fields present on the context
// as alternating key/value log args.
func extractContextFields(ctx context.Context) []any {
	var args []any

	if runID := GetRunID(ctx); runID != "" {
		args = append(args, string(RunIDKey), runID)
	}
	if market := GetMarket(ctx); market != "" {
		args = append(args, string(MarketKey), market)
	}
	if sku := GetSKU(ctx); sku != "" {
		args = append(args, string(SKUKey), sku)
	}

	return args
}
