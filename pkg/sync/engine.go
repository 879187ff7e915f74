package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/db"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/remote"
)

var (
	// ErrIdentityUnavailable means reconciliation could not resolve the
	// acting user after its single bounded wait and was abandoned.
	ErrIdentityUnavailable = errors.New("owner identity unavailable")
)

const (
	defaultOrdersCollection = "orders"
	defaultUserField        = "user"
	defaultIdentityWait     = time.Second
)

// IdentityFunc resolves the acting user's identity (account email).
// An empty string means not yet available.
type IdentityFunc func() string

// Config tunes an Engine.
type Config struct {
	// OrdersCollection is the remote collection name. Default "orders".
	OrdersCollection string

	// Identity resolves the owner identity for reconciliation downloads.
	Identity IdentityFunc

	// IdentityWait bounds the single wait for identity to appear before a
	// reconciliation is abandoned. Default 1s.
	IdentityWait time.Duration
}

// Report summarizes one upload-only sync pass.
type Report struct {
	Synced int
	Failed int
}

// Engine orchestrates order synchronization between the local store and
// the remote document store. It owns no UI concerns: failures on the
// background paths are logged and retried later, never surfaced.
type Engine struct {
	local   *db.LocalDB
	remote  remote.Store
	monitor *Monitor
	cfg     Config

	// One in-flight guard per sync kind so overlapping triggers
	// (timer tick vs reconnect) coalesce instead of racing.
	uploadFlight    atomic.Bool
	reconcileFlight atomic.Bool
}

// NewEngine creates a sync engine over an opened LocalDB, a remote store
// and a connectivity monitor.
func NewEngine(local *db.LocalDB, rs remote.Store, monitor *Monitor, cfg Config) *Engine {
	if cfg.OrdersCollection == "" {
		cfg.OrdersCollection = defaultOrdersCollection
	}
	if cfg.IdentityWait <= 0 {
		cfg.IdentityWait = defaultIdentityWait
	}
	return &Engine{
		local:   local,
		remote:  rs,
		monitor: monitor,
		cfg:     cfg,
	}
}

// Start wires the engine to its monitor's trigger points: reconnect and
// visibility edges run a full reconciliation, the periodic tick retries
// the outbox, and one upload pass runs immediately at startup.
func (e *Engine) Start(ctx context.Context) {
	e.monitor.OnOnline(func() {
		go e.reconcileTrigger(ctx, "online transition")
	})
	e.monitor.OnVisible(func() {
		go e.reconcileTrigger(ctx, "visibility regained")
	})
	e.monitor.OnTick(func() {
		e.uploadTrigger(ctx, "periodic tick")
	})

	log.Printf("[Sync] engine started, checking for unsynced orders")
	go e.uploadTrigger(ctx, "startup")
}

func (e *Engine) uploadTrigger(ctx context.Context, reason string) {
	if _, err := e.SyncOrders(ctx); err != nil {
		log.Printf("[Sync] %s sync failed: %v", reason, err)
	}
}

func (e *Engine) reconcileTrigger(ctx context.Context, reason string) {
	if err := e.SyncOrdersFromRemote(ctx); err != nil {
		log.Printf("[Sync] %s reconciliation failed: %v", reason, err)
	}
}

// SyncOrders uploads every pending order, sequentially. Offline is a
// logged no-op. Each order's upload is independent: one failure never
// aborts the rest of the batch. Overlapping calls coalesce; the second
// caller returns immediately with an empty report.
func (e *Engine) SyncOrders(ctx context.Context) (Report, error) {
	if !e.uploadFlight.CompareAndSwap(false, true) {
		log.Printf("[Sync] upload already in flight, coalescing")
		return Report{}, nil
	}
	defer e.uploadFlight.Store(false)

	if !e.monitor.Online() {
		log.Printf("[Sync] skipping sync: offline")
		return Report{}, nil
	}

	return e.uploadPending(ctx)
}

// uploadPending is the guard-free upload pass shared by SyncOrders and the
// reconciliation's step A.
func (e *Engine) uploadPending(ctx context.Context) (Report, error) {
	pending, err := e.local.UnsyncedOrders()
	if err != nil {
		return Report{}, fmt.Errorf("list unsynced orders: %w", err)
	}
	if len(pending) == 0 {
		return Report{}, nil
	}

	log.Printf("[Sync] found %d unsynced orders, starting sync", len(pending))

	var report Report
	for i := range pending {
		o := &pending[i]
		if err := e.UploadOrder(ctx, o); err != nil {
			report.Failed++
			log.Printf("[Sync] order %d failed to sync: %v", o.ID, err)
			continue
		}
		report.Synced++
	}

	if report.Synced > 0 {
		log.Printf("[Sync] synced %d orders to remote", report.Synced)
	}
	if report.Failed > 0 {
		log.Printf("[Sync] failed to sync %d orders, will retry", report.Failed)
	}
	return report, nil
}

// UploadOrder inserts one order into the remote store and marks it synced
// locally. The Synced flag is stripped from the payload. A crash between
// the insert and the local mark produces a duplicate remote document on
// the next retry: uploads are at-least-once.
func (e *Engine) UploadOrder(ctx context.Context, o *db.Order) error {
	if _, err := e.remote.Insert(ctx, e.cfg.OrdersCollection, o.RemoteFields()); err != nil {
		if errors.Is(err, remote.ErrPermissionDenied) {
			log.Printf("[Sync] order %d rejected: permission denied, check remote security rules", o.ID)
		}
		return err
	}

	found, err := e.local.MarkSynced(o.ID)
	if err != nil {
		return fmt.Errorf("mark order %d synced: %w", o.ID, err)
	}
	if !found {
		// Cleared by a concurrent reconciliation; the remote copy stands.
		log.Printf("[Sync] order %d gone after upload, skipping local mark", o.ID)
	}
	return nil
}

// SyncOrdersFromRemote is the destructive full reconciliation: upload the
// outbox, then rebuild the local order cache from remote truth. Triggered
// on reconnect and visibility edges, never on the periodic tick. The
// clear-then-download sequence is not atomic; a crash in between leaves
// the cache empty until the next successful reconciliation (local cache is
// disposable, remote is authoritative).
func (e *Engine) SyncOrdersFromRemote(ctx context.Context) error {
	if !e.reconcileFlight.CompareAndSwap(false, true) {
		log.Printf("[Sync] reconciliation already in flight, coalescing")
		return nil
	}
	defer e.reconcileFlight.Store(false)

	owner, err := e.resolveIdentity(ctx)
	if err != nil {
		log.Printf("[Sync] reconciliation abandoned: %v", err)
		return err
	}

	// Step A: drain the outbox first so no pending order is lost to the
	// destructive clear. If anything failed to upload we stop here and
	// keep the local cache; the next trigger retries.
	report, err := e.uploadPending(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("reconciliation aborted: %d pending orders failed to upload", report.Failed)
	}

	// Step B: clear.
	if err := e.local.ClearOrders(); err != nil {
		return fmt.Errorf("clear local orders: %w", err)
	}

	// Step C: download remote truth, stored as already-synced.
	docs, err := e.remote.QueryByField(ctx, e.cfg.OrdersCollection, defaultUserField, owner)
	if err != nil {
		return fmt.Errorf("download orders for %s: %w", owner, err)
	}

	stored := 0
	for _, doc := range docs {
		o, err := db.OrderFromFields(doc.Fields)
		if err != nil {
			log.Printf("[Sync] skipping malformed remote order %s: %v", doc.ID, err)
			continue
		}
		o.Synced = true
		if err := e.local.PutOrder(&o); err != nil {
			return fmt.Errorf("store downloaded order %d: %w", o.ID, err)
		}
		stored++
	}

	log.Printf("[Sync] reconciliation complete: %d orders downloaded for %s", stored, owner)
	return nil
}

// resolveIdentity returns the owner identity, waiting once (bounded) for
// it to become available. Best effort: no retry loop beyond the single
// wait.
func (e *Engine) resolveIdentity(ctx context.Context) (string, error) {
	if e.cfg.Identity == nil {
		return "", ErrIdentityUnavailable
	}
	if owner := e.cfg.Identity(); owner != "" {
		return owner, nil
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(e.cfg.IdentityWait):
	}

	if owner := e.cfg.Identity(); owner != "" {
		return owner, nil
	}
	return "", ErrIdentityUnavailable
}
