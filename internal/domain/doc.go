// Package domain defines the core domain types and interfaces.
//
// Shared types and cross-cutting contracts only, no implementation code.
// Keeping the repository interface here lets the storage backends and the
// application layer depend on the same contract without import cycles.
package domain
