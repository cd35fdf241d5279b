// Package config - defaults.go centralizes the built-in default values.
package config

import "time"

// =============================================================================
// BUDGET
// =============================================================================

// DefaultTotalBudget is the session budget ceiling in USD.
const DefaultTotalBudget = 40.0

// =============================================================================
// CACHE
// =============================================================================

// DefaultCacheMaxEntries bounds the response cache (LRU eviction).
const DefaultCacheMaxEntries = 512

// =============================================================================
// PROVIDER
// =============================================================================

// DefaultProviderTimeout is the wall-clock ceiling on a remote reasoning call.
const DefaultProviderTimeout = 30 * time.Second

// =============================================================================
// WORKFLOW
// =============================================================================

// DefaultQualityThreshold is the minimum per-step quality score in adaptive
// workflows before one adaptation pass is attempted.
const DefaultQualityThreshold = 0.7

// DefaultHistoryLimit is how many workflow runs are kept in memory.
const DefaultHistoryLimit = 50

// =============================================================================
// HTTP SERVER
// =============================================================================

// DefaultServerPort for the orchestrator HTTP surface.
const DefaultServerPort = 8090

// DefaultServerReadTimeout for the HTTP server.
const DefaultServerReadTimeout = 30 * time.Second

// DefaultServerWriteTimeout for the HTTP server (long enough for full runs).
const DefaultServerWriteTimeout = 5 * time.Minute
