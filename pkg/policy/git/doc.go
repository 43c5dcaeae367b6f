// Package git keeps a local checkout of a rule pack repository in sync
// so the registry can load packs from version-controlled storage. The
// first Sync clones the configured branch; later Syncs pull and report
// whether HEAD moved, which callers use to trigger a registry reload.
package git
