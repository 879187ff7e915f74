package sync

import (
	"context"
	"testing"
	"time"
)

func TestMonitorOnlineEdgeTriggered(t *testing.T) {
	m := NewMonitor(time.Hour)

	onlineCount := 0
	offlineCount := 0
	m.OnOnline(func() { onlineCount++ })
	m.OnOffline(func() { offlineCount++ })

	// Repeating the initial offline state is not a transition.
	m.SetOnline(false)
	if offlineCount != 0 {
		t.Errorf("Offline fired %d times without a transition", offlineCount)
	}

	m.SetOnline(true)
	m.SetOnline(true)
	if onlineCount != 1 {
		t.Errorf("Online fired %d times for one transition, want 1", onlineCount)
	}

	m.SetOnline(false)
	if offlineCount != 1 {
		t.Errorf("Offline fired %d times, want 1", offlineCount)
	}
	if m.Online() {
		t.Error("Online() reports true after going offline")
	}
}

func TestMonitorVisibleOnlyWhileOnline(t *testing.T) {
	m := NewMonitor(time.Hour)

	visibleCount := 0
	m.OnVisible(func() { visibleCount++ })

	// Regaining visibility while offline fires nothing.
	m.SetVisible(false)
	m.SetVisible(true)
	if visibleCount != 0 {
		t.Errorf("Visible fired %d times while offline, want 0", visibleCount)
	}

	m.SetOnline(true)
	m.SetVisible(false)
	m.SetVisible(true)
	if visibleCount != 1 {
		t.Errorf("Visible fired %d times while online, want 1", visibleCount)
	}

	// Repeating the current visibility is not a transition.
	m.SetVisible(true)
	if visibleCount != 1 {
		t.Errorf("Visible fired %d times after repeat, want 1", visibleCount)
	}
}

func TestMonitorTickWhileOnline(t *testing.T) {
	m := NewMonitor(10 * time.Millisecond)

	ticks := make(chan struct{}, 1)
	m.OnTick(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	m.SetOnline(true)
	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("No tick within a second while online")
	}
}

func TestMonitorTickSuppressedOffline(t *testing.T) {
	m := NewMonitor(10 * time.Millisecond)

	ticks := make(chan struct{}, 16)
	m.OnTick(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	select {
	case <-ticks:
		t.Fatal("Tick fired while offline")
	case <-time.After(100 * time.Millisecond):
	}
}
