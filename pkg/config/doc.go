// Package config defines the shelfguard configuration model and its
// loading pipeline: YAML file, defaults, SHELFGUARD_* environment
// overrides, then validation. Validation collects every failure into a
// single ValidationError so operators can fix a config in one pass.
package config
