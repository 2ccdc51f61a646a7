package rules

import (
	"testing"
)

func TestWatcherRegistryNotifiesInOrder(t *testing.T) {
	registry := NewWatcherRegistry()

	var seen []string
	for _, key := range []string{"b", "a", "c"} {
		registry.AddWatcher(&recordingWatcher{BaseWatcher: NewBaseWatcher(key), seen: &seen})
	}
	registry.AddWatcher(nil)

	registry.NotifyWatchers(NewEvent(EventTurnEnded, SideOpponent, "", ""))

	if len(seen) != 3 || seen[0] != "b" || seen[1] != "a" || seen[2] != "c" {
		t.Fatalf("expected [b a c], got %v", seen)
	}
}

func TestWatcherRegistryReplacesSameKey(t *testing.T) {
	registry := NewWatcherRegistry()

	var first, second []string
	registry.AddWatcher(&recordingWatcher{BaseWatcher: NewBaseWatcher("stats"), seen: &first})
	registry.AddWatcher(&recordingWatcher{BaseWatcher: NewBaseWatcher("stats"), seen: &second})

	registry.NotifyWatchers(NewEvent(EventCardPlayed, SideHuman, "card1", ""))

	if len(first) != 0 {
		t.Fatalf("replaced watcher should not be notified, got %v", first)
	}
	if len(second) != 1 {
		t.Fatalf("expected the replacement to be notified once, got %v", second)
	}
}

type recordingWatcher struct {
	*BaseWatcher
	seen *[]string
}

func (rw *recordingWatcher) Watch(event Event) {
	*rw.seen = append(*rw.seen, rw.GetKey())
}
