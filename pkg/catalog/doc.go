// Package catalog loads product listings from retailer CSV exports.
//
// Exports disagree on column names, bullet separators, and image list
// formats, so loading resolves each SKU field through an ordered alias
// list and splits bullet cells on the separators seen in the wild.
// The SKU type implements the rule evaluator's Item interface, so a
// loaded listing can be validated directly.
package catalog
