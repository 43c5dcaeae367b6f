// Shelfguard is a jurisdiction-aware listing compliance engine.
//
// It evaluates e-commerce listings against market- and category-scoped
// rule packs, compares a client listing against a competitor, and
// produces compliant rewrite suggestions with a markdown report.
//
// Usage:
//
//	# Start the HTTP API with default configuration
//	shelfguard serve
//
//	# Compare two listings from a catalog export
//	shelfguard compare --catalog data/catalog.csv --client B00X --competitor B00Y --market AE
//
//	# List the rules selected for a market
//	shelfguard rules list --market AE
//
//	# Validate rule packs
//	shelfguard rules lint --dir data/rule_packs
package main

func main() {
	Execute()
}
