// Package registry loads policy packs from a storage root and scopes
// their rules to a market and category list.
//
// # Storage Layout
//
// The storage root contains one subdirectory per policy pack. Each
// pack directory holds a required rules.yaml and an optional meta.yaml:
//
//	policies/
//	  pet-supplies_ae_2018/
//	    rules.yaml
//	    meta.yaml
//	  grocery_ae_2021/
//	    rules.yaml
//
// # Degradation, Not Failure
//
// Loading is deliberately forgiving: a directory without a rules file
// contributes no pack, and a file that fails to parse is treated as an
// empty mapping, so a malformed pack yields zero rules rather than
// failing the whole load. The worst outcome of bad input is fewer
// findings than expected, never a crash. Callers wanting a sanity
// signal should compare pack/rule counts against expectations.
//
// # Category Matching
//
// SelectRules matches categories by case-insensitive substring
// containment in either direction ("PetSupplies" matches both "pet"
// and "PetSuppliesAndFood"). This tolerates the inconsistent category
// taxonomies found across retailer catalogs, at the cost of possible
// false-positive matches between unrelated categories sharing a short
// substring (e.g. "car" and "scarf"). That trade-off is intentional;
// tightening it would change which rules apply to which catalogs.
package registry
