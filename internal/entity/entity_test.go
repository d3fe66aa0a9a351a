package entity

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEvent_UnmarshalStringCoordinates(t *testing.T) {
	raw := `{"id":"GekhGJWH5xpzDpnYca","title":"London Film Fair","category":"expos",
		"lat":51.523549,"lon":"-0.127721","end_local":"2025-04-06 16:00:00+00","venue_name":"Hall"}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if e.ID != "GekhGJWH5xpzDpnYca" || e.Title != "London Film Fair" {
		t.Errorf("Unexpected event: %+v", e)
	}
	if float64(e.Lat) != 51.523549 || float64(e.Lon) != -0.127721 {
		t.Errorf("Unexpected coordinates: %v, %v", e.Lat, e.Lon)
	}

	end, err := e.EndTime()
	if err != nil {
		t.Fatalf("EndTime failed: %v", err)
	}
	want := time.Date(2025, 4, 6, 16, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("Expected end %v, got %v", want, end)
	}
}

func TestEvent_MarshalKeepsPayload(t *testing.T) {
	raw := `{"id":"e1","lat":1,"lon":"2","venue_name":"Hall"}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("Unmarshal output failed: %v", err)
	}
	if fields["venue_name"] != "Hall" {
		t.Errorf("Expected passthrough field venue_name, got %v", fields)
	}
	if fields["lon"] != "2" {
		t.Errorf("Expected original lon representation, got %v", fields["lon"])
	}
}

func TestEvent_MarshalWithoutPayload(t *testing.T) {
	e := Event{ID: "e2", Title: "Gig", Lat: 10, Lon: 20, EndLocal: "2025-04-06T16:00:00Z"}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Event
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.ID != "e2" || float64(back.Lat) != 10 || float64(back.Lon) != 20 {
		t.Errorf("Unexpected event after round trip: %+v", back)
	}
}

func TestEvent_EndTimeInvalid(t *testing.T) {
	e := Event{EndLocal: "tomorrow evening"}
	if _, err := e.EndTime(); err == nil {
		t.Error("Expected error for unparseable end_local")
	}
}

func TestCoordinate_InvalidString(t *testing.T) {
	var c Coordinate
	if err := json.Unmarshal([]byte(`"abc"`), &c); err == nil {
		t.Error("Expected error for non-numeric coordinate string")
	}
}

func TestTrackedLocation_Age(t *testing.T) {
	now := time.UnixMilli(1_700_000_010_000)
	loc := TrackedLocation{CapturedAt: 1_700_000_000_000}
	if got := loc.Age(now); got != 10*time.Second {
		t.Errorf("Expected age 10s, got %v", got)
	}
}
