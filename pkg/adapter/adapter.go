// Package adapter is the surface the UI layer talks to: order lifecycle,
// manual sync, and the product pass-through. It owns the LocalDB handle
// and the live product subscription for its whole lifecycle; nothing here
// lives in package-level state.
package adapter

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Muawiaimtiaz1/nabula-pos/pkg/db"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/remote"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
	possync "github.com/Muawiaimtiaz1/nabula-pos/pkg/sync"
)

const defaultProductsCollection = "products"

// Config assembles an Adapter.
type Config struct {
	// Store is the opened KV store; the caller keeps ownership.
	Store store.Store

	// Remote is the remote document store.
	Remote remote.Store

	// Identity resolves the acting user for reconciliation.
	Identity possync.IdentityFunc

	// SyncInterval overrides the periodic retry cadence. Zero keeps the
	// default.
	SyncInterval time.Duration

	// IdentityWait bounds how long a reconciliation waits for the identity
	// to appear. Zero keeps the default.
	IdentityWait time.Duration

	// OrdersCollection / ProductsCollection override remote collection
	// names. Zero values keep the defaults.
	OrdersCollection   string
	ProductsCollection string

	// LocalOptions are passed through to db.Open.
	LocalOptions []db.Option
}

// Adapter wires LocalDB, Engine and Monitor together and exposes the
// order lifecycle API.
type Adapter struct {
	mu                 sync.Mutex
	local              *db.LocalDB
	remote             remote.Store
	engine             *possync.Engine
	monitor            *possync.Monitor
	productsCollection string
	cancelProducts     func()

	ready  chan struct{}
	cancel context.CancelFunc
}

// New opens the local database, starts the connectivity monitor and the
// sync engine, and kicks the startup sync. The returned adapter is ready;
// Ready exists for callers that hold the adapter before construction
// finishes.
func New(cfg Config) (*Adapter, error) {
	local, err := db.Open(cfg.Store, cfg.LocalOptions...)
	if err != nil {
		return nil, err
	}

	productsCollection := cfg.ProductsCollection
	if productsCollection == "" {
		productsCollection = defaultProductsCollection
	}

	monitor := possync.NewMonitor(cfg.SyncInterval)
	engine := possync.NewEngine(local, cfg.Remote, monitor, possync.Config{
		OrdersCollection: cfg.OrdersCollection,
		Identity:         cfg.Identity,
		IdentityWait:     cfg.IdentityWait,
	})

	ctx, cancel := context.WithCancel(context.Background())
	monitor.Start(ctx)
	engine.Start(ctx)

	a := &Adapter{
		local:              local,
		remote:             cfg.Remote,
		engine:             engine,
		monitor:            monitor,
		productsCollection: productsCollection,
		ready:              make(chan struct{}),
		cancel:             cancel,
	}
	close(a.ready)

	log.Printf("[Adapter] initialized, checking for unsynced orders")
	return a, nil
}

// Ready is closed once the adapter can serve order and product
// operations.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// Monitor exposes the connectivity monitor so platform glue can feed
// online/offline/visibility signals.
func (a *Adapter) Monitor() *possync.Monitor {
	return a.monitor
}

// Close stops the product listener, the monitor loop and the engine
// triggers, and detaches the local database. The KV store stays open; the
// caller owns it.
func (a *Adapter) Close() {
	a.StopProductListener()
	a.monitor.Stop()
	a.cancel()
	a.local.Close()
}

// SaveOrder persists the order locally first (outbox discipline), then, if
// currently online, uploads it immediately so the connected case syncs
// with minimal latency. Offline it returns right after the local write and
// leaves the upload to the monitor's triggers. Upload failure is logged,
// not returned: the order is durable and will be retried.
func (a *Adapter) SaveOrder(ctx context.Context, o *db.Order) error {
	if o.ID == 0 {
		o.ID = time.Now().UnixMilli()
	}
	if o.Date.IsZero() {
		o.Date = time.Now().UTC()
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = "cash"
	}
	if o.CustomerName == "" {
		o.CustomerName = "Guest"
	}
	o.Synced = false

	if err := a.local.PutOrder(o); err != nil {
		return err
	}
	log.Printf("[Adapter] order %d saved locally", o.ID)

	if !a.monitor.Online() {
		log.Printf("[Adapter] offline, sync deferred for order %d", o.ID)
		return nil
	}

	if err := a.engine.UploadOrder(ctx, o); err != nil {
		log.Printf("[Adapter] immediate upload of order %d failed, will retry: %v", o.ID, err)
	}
	return nil
}

// GetOrders reads from the local cache only; history stays fast and
// offline-capable. owner != "" filters by exact owner match.
func (a *Adapter) GetOrders(owner string) ([]db.Order, error) {
	return a.local.Orders(owner)
}

// SyncOrders is the manual force-sync affordance. Unlike the background
// triggers, its outcome is returned to the caller for display.
func (a *Adapter) SyncOrders(ctx context.Context) (possync.Report, error) {
	return a.engine.SyncOrders(ctx)
}

// Products returns the cached catalog rows for one owner.
func (a *Adapter) Products(uid string) ([]db.Product, error) {
	return a.local.ProductsByOwner(uid)
}

// SetProductListener subscribes to live catalog updates for one owner.
// Every snapshot is written through the local cache (empty snapshots are
// dropped there) before onUpdate runs. An existing listener is stopped
// first; offline skips subscribing entirely.
func (a *Adapter) SetProductListener(uid string, onUpdate func([]db.Product)) error {
	a.StopProductListener()

	if !a.monitor.Online() {
		log.Printf("[Products] offline, skipping remote listener")
		return nil
	}

	cancel, err := a.remote.Subscribe(a.productsCollection, "uid", uid, func(docs []remote.Document) {
		list := make([]db.Product, 0, len(docs))
		for _, doc := range docs {
			list = append(list, db.ProductFromFields(doc.ID, doc.Fields))
		}

		if err := a.local.ReplaceProducts(list); err != nil {
			log.Printf("[Products] caching %d products failed: %v", len(list), err)
			return
		}
		log.Printf("[Products] remote update: %d products cached", len(list))

		if onUpdate != nil {
			onUpdate(list)
		}
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cancelProducts = cancel
	a.mu.Unlock()
	log.Printf("[Products] remote listener active for %s", uid)
	return nil
}

// StopProductListener cancels the live catalog subscription, if any.
func (a *Adapter) StopProductListener() {
	a.mu.Lock()
	cancel := a.cancelProducts
	a.cancelProducts = nil
	a.mu.Unlock()

	if cancel != nil {
		log.Printf("[Products] stopping remote listener")
		cancel()
	}
}
