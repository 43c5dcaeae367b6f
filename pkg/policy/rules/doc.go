// Package rules implements the policy rule data model, the check
// library, and the rule evaluator for product listing content.
//
// # Rule Model
//
// A Rule is one named, parameterized constraint on a single listing
// section (title, bullets, description, images). Rules arrive as
// loosely-typed mappings from YAML policy packs; FromMap normalizes
// them into one canonical immutable record at the registry boundary,
// so everything downstream depends on exactly one shape.
//
// # Check Library
//
// Each check is a pure predicate (value, params) -> bool. Checks are
// total and fail open: a wrong-shape value, a missing required
// parameter, or an uncompilable pattern all pass. A misconfigured rule
// may under-enforce, but it can never block a listing or crash a run.
//
// # Evaluation
//
//	packs, err := registry.NewLoader(logger).LoadAll("data/policies")
//	selected := registry.SelectRules(packs, "AE", []string{"PetSupplies"})
//	findings := rules.ValidateWithRules(sku, selected)
//
// ValidateWithRules emits one Finding per evaluated rule, in input
// order. Rules with an unknown section or check type are skipped
// silently; callers wanting visibility must compare input rule count
// against output finding count themselves.
//
// # Thread Safety
//
// Rules are never mutated after selection, so any number of goroutines
// may call ValidateWithRules concurrently, each with its own item.
package rules
