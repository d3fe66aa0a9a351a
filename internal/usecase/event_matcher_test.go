package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/paincake00/radarcore/internal/entity"
)

func TestEventMatcher_FindNearby(t *testing.T) {
	geo := newFakeGeo()
	m := NewEventMatcher(geo)
	now := baseTime()

	events := []entity.Event{
		newEvent("near-soon", north(london, 750), now.Add(5*time.Minute)),
		newEvent("too-far", north(london, 1200), now.Add(5*time.Minute)),
		newEvent("near-late", north(london, 500), now.Add(30*time.Minute)),
		newEvent("near-ended", north(london, 200), now.Add(-9*time.Minute)),
	}
	indexEvents(t, geo, events)

	got, err := m.FindNearby(context.Background(), london, 1000, events, 10*time.Minute, now)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 matches, got %+v", got)
	}
	if got[0].ID != "near-ended" || got[1].ID != "near-soon" {
		t.Errorf("Expected [near-ended near-soon], got [%s %s]", got[0].ID, got[1].ID)
	}
	if d := got[1].Distance; d < 749 || d > 751 {
		t.Errorf("Expected ~750m, got %.2f", d)
	}
	if got[1].Title != "Event near-soon" || got[1].Category != "music" {
		t.Errorf("Event fields not carried over: %+v", got[1])
	}
}

func TestEventMatcher_TieBreakByID(t *testing.T) {
	geo := newFakeGeo()
	m := NewEventMatcher(geo)
	now := baseTime()

	pos := north(london, 300)
	events := []entity.Event{
		newEvent("b", pos, now),
		newEvent("c", north(london, 100), now),
		newEvent("a", pos, now),
	}
	indexEvents(t, geo, events)

	first, err := m.FindNearby(context.Background(), london, 1000, events, time.Minute, now)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	var ids []string
	for _, e := range first {
		ids = append(ids, e.ID)
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("Expected [c a b], got %v", ids)
	}

	// Повторный вызов на тех же данных дает тот же результат.
	second, _ := m.FindNearby(context.Background(), london, 1000, events, time.Minute, now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected deterministic result, got %+v and %+v", first, second)
	}
}

func TestEventMatcher_EmptySnapshotSkipsIndex(t *testing.T) {
	geo := newFakeGeo()
	geo.fail = errBoom
	m := NewEventMatcher(geo)

	got, err := m.FindNearby(context.Background(), london, 1000, nil, time.Minute, baseTime())
	if err != nil {
		t.Fatalf("Expected no error on empty snapshot, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", got)
	}
}

func TestEventMatcher_IndexError(t *testing.T) {
	geo := newFakeGeo()
	geo.fail = errBoom
	m := NewEventMatcher(geo)
	events := []entity.Event{newEvent("e1", london, baseTime())}

	_, err := m.FindNearby(context.Background(), london, 1000, events, time.Minute, baseTime())
	if !errors.Is(err, ErrIndexUnavailable) || !errors.Is(err, errBoom) {
		t.Errorf("Expected wrapped index error, got %v", err)
	}
}

func TestEventMatcher_SkipsMalformedAndDuplicates(t *testing.T) {
	geo := newFakeGeo()
	m := NewEventMatcher(geo)
	now := baseTime()

	bad := newEvent("bad-time", north(london, 100), now)
	bad.EndLocal = "tomorrow-ish"
	dup := newEvent("dup", north(london, 200), now)
	dupAgain := dup
	dupAgain.Title = "second copy"
	missing := newEvent("not-indexed", london, now)

	events := []entity.Event{bad, dup, dupAgain}
	indexEvents(t, geo, events)
	events = append(events, missing)

	got, err := m.FindNearby(context.Background(), london, 1000, events, time.Minute, now)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dup" || got[0].Title != "Event dup" {
		t.Errorf("Expected only first copy of dup, got %+v", got)
	}
}

func TestEventMatcher_DuplicateAfterFilteredFirstCopy(t *testing.T) {
	geo := newFakeGeo()
	m := NewEventMatcher(geo)
	now := baseTime()

	stale := newEvent("dup", north(london, 200), now.Add(-time.Hour))
	fresh := stale
	fresh.EndLocal = now.Format(time.RFC3339)
	fresh.Title = "second copy"

	events := []entity.Event{stale, fresh}
	indexEvents(t, geo, events)

	got, err := m.FindNearby(context.Background(), london, 1000, events, 10*time.Minute, now)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected second copy of dup to be ignored, got %+v", got)
	}
}
