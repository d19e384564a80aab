// Package syncrt defines the sync scheduler protocol every source kind
// (filesystem, git, crawler-backed online) must satisfy so the dispatcher
// never branches on source kind in routing code — it only calls
// Initialize/Trigger/Stats/Stop.
package syncrt

import (
	"context"
	"time"
)

// TriggerStatus reports what happened when a sync was requested.
type TriggerStatus string

const (
	StatusAccepted       TriggerStatus = "accepted"
	StatusAlreadyRunning TriggerStatus = "already_running"
	StatusFailed         TriggerStatus = "failed"
)

// LockStatus further qualifies an already_running trigger result.
type LockStatus string

const (
	LockStatusNone       LockStatus = ""
	LockStatusContended  LockStatus = "contended"
)

// TriggerResult is the immediate, non-blocking response to Trigger.
type TriggerResult struct {
	Status     TriggerStatus
	LockStatus LockStatus
}

// Stats is the point-in-time sync health snapshot the dispatcher's health
// endpoint reports.
type Stats struct {
	LastSyncAt     time.Time
	LastSuccessAt  time.Time
	LastError      string
	DocumentsCount int64
	Fingerprint    string
}

// Runtime is the sync scheduler contract. Every source kind's
// implementation runs its own sync loop and publishes through
// tenant.Runtime.SwapSegment as the final step of a successful sync; the
// indexer is called as a library, never shelled out to.
type Runtime interface {
	// Initialize performs idempotent bootstrap, optionally running an
	// initial sync. Safe to call more than once.
	Initialize(ctx context.Context) error

	// Trigger schedules a sync and returns immediately. forceCrawler
	// requests crawling even when use_crawler defaults to a cheaper source
	// (meaningful only for online tenants); forceFull bypasses the
	// freshness check but still respects the lease.
	Trigger(ctx context.Context, forceCrawler, forceFull bool) (TriggerResult, error)

	// Stats returns the current sync health snapshot.
	Stats() Stats

	// Stop requests cooperative shutdown: in-flight work finishes, no new
	// work starts. After the bounded deadline passes, the caller should
	// treat the runtime as hard-aborted; any held lease expires on its own.
	Stop(ctx context.Context) error
}
