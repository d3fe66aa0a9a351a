package env

import (
	"testing"
	"time"
)

func TestGetString(t *testing.T) {
	t.Setenv("RADAR_TEST_STR", "value")
	if got := GetString("RADAR_TEST_STR", "fallback"); got != "value" {
		t.Errorf("Expected value, got %q", got)
	}
	t.Setenv("RADAR_TEST_STR", "")
	if got := GetString("RADAR_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback for empty value, got %q", got)
	}
	if got := GetString("RADAR_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %q", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("RADAR_TEST_INT", "42")
	if got := GetInt("RADAR_TEST_INT", 1); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	t.Setenv("RADAR_TEST_INT", "forty-two")
	if got := GetInt("RADAR_TEST_INT", 1); got != 1 {
		t.Errorf("Expected fallback for bad value, got %d", got)
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("RADAR_TEST_DUR", "250ms")
	if got := GetDuration("RADAR_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", got)
	}
	t.Setenv("RADAR_TEST_DUR", "soon")
	if got := GetDuration("RADAR_TEST_DUR", time.Second); got != time.Second {
		t.Errorf("Expected fallback, got %v", got)
	}
}
