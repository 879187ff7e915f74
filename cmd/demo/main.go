// Command demo drives the offline-first order data layer from a terminal,
// standing in for the POS screens: place orders while offline, flip
// connectivity, and watch the outbox drain and reconcile.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Muawiaimtiaz1/nabula-pos/internal/config"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/adapter"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/db"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/remote"
	"github.com/Muawiaimtiaz1/nabula-pos/pkg/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.Load()

	user := flag.String("user", "demo@pos.local", "acting user (owner identity)")
	mem := flag.Bool("mem", false, "use an in-memory store instead of the data dir")
	debug := flag.Bool("debug", false, "enable data-layer logs")
	flag.Parse()

	if !*debug {
		log.SetOutput(io.Discard)
	}

	var opts []store.BadgerOption
	if *mem {
		opts = append(opts, store.WithInMemory())
	} else if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	kv, err := store.NewBadgerStore(cfg.DataDir, opts...)
	if err != nil {
		return err
	}
	defer kv.Close()

	rs := remote.NewMemoryStore()
	seedCatalog(rs, *user)

	a, err := adapter.New(adapter.Config{
		Store:              kv,
		Remote:             rs,
		Identity:           func() string { return *user },
		SyncInterval:       cfg.SyncInterval,
		IdentityWait:       cfg.IdentityWait,
		OrdersCollection:   cfg.OrdersCollection,
		ProductsCollection: cfg.ProductsCollection,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	<-a.Ready()

	fmt.Printf("POS data layer demo - user %s (starting OFFLINE)\n", *user)
	fmt.Println("commands: online | offline | order <total> [customer] | history | pending | sync | remote | quit")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "online":
			rs.SetOnline(true)
			a.Monitor().SetOnline(true)
			fmt.Println("network: online")

		case "offline":
			rs.SetOnline(false)
			a.Monitor().SetOnline(false)
			fmt.Println("network: offline")

		case "order":
			if len(fields) < 2 {
				fmt.Println("usage: order <total> [customer]")
				continue
			}
			total, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				fmt.Printf("bad total %q\n", fields[1])
				continue
			}
			o := db.Order{
				Items:    []db.LineItem{{ID: "demo", Name: "demo item", Price: total, Qty: 1}},
				Subtotal: total,
				Total:    total,
				User:     *user,
			}
			if len(fields) > 2 {
				o.CustomerName = strings.Join(fields[2:], " ")
			}
			if err := a.SaveOrder(ctx, &o); err != nil {
				fmt.Printf("save failed: %v\n", err)
				continue
			}
			fmt.Printf("order %d saved\n", o.ID)

		case "history":
			orders, err := a.GetOrders(*user)
			if err != nil {
				fmt.Printf("history failed: %v\n", err)
				continue
			}
			sort.Slice(orders, func(i, j int) bool {
				return orders[i].Date.After(orders[j].Date)
			})
			for _, o := range orders {
				fmt.Printf("  #%d  %s  %.2f  %-10s synced=%v\n",
					o.ID, o.Date.Format("15:04:05"), o.Total, o.CustomerName, o.Synced)
			}
			fmt.Printf("%d orders\n", len(orders))

		case "pending":
			orders, err := a.GetOrders(*user)
			if err != nil {
				fmt.Printf("pending failed: %v\n", err)
				continue
			}
			n := 0
			for _, o := range orders {
				if o.Pending() {
					n++
				}
			}
			fmt.Printf("%d pending orders in outbox\n", n)

		case "sync":
			report, err := a.SyncOrders(ctx)
			if err != nil {
				fmt.Printf("sync failed: %v\n", err)
				continue
			}
			fmt.Printf("synced=%d failed=%d\n", report.Synced, report.Failed)

		case "remote":
			docs := rs.Documents(cfg.OrdersCollection)
			for _, doc := range docs {
				fmt.Printf("  %s total=%v user=%v\n", doc.ID, doc.Fields["total"], doc.Fields["user"])
			}
			fmt.Printf("%d remote documents\n", len(docs))

		case "quit", "exit":
			return nil

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func seedCatalog(rs *remote.MemoryStore, uid string) {
	ctx := context.Background()
	for _, p := range []map[string]any{
		{"uid": uid, "name": "Espresso", "price": 2.50, "quantity": 100},
		{"uid": uid, "name": "Croissant", "price": 3.20, "quantity": 40},
	} {
		if _, err := rs.Insert(ctx, "products", p); err != nil {
			log.Printf("seed product failed: %v", err)
		}
	}
}
