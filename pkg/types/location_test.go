package types

import (
	"testing"
)

func TestLocationRoundTrip(t *testing.T) {
	loc := Location{
		City:     "Riyadh",
		District: "Al Olaya",
		Street:   "King Fahd Rd",
		Lat:      24.7136,
		Lng:      46.6753,
	}

	raw, err := loc.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got Location
	if err := got.Scan(raw); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.City != "Riyadh" || got.District != "Al Olaya" {
		t.Fatalf("unexpected location %+v", got)
	}
}

func TestLocationValueRequiresCity(t *testing.T) {
	if _, err := (Location{District: "Al Olaya"}).Value(); err == nil {
		t.Fatal("expected error for missing city")
	}
}

func TestJSONMapNilEncodesEmptyObject(t *testing.T) {
	var m JSONMap
	raw, err := m.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if string(raw.([]byte)) != "{}" {
		t.Fatalf("expected empty object, got %s", raw)
	}
}

func TestJSONMapScan(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte(`{"final_price":"450.00","service_category":"plumbing"}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if m["service_category"] != "plumbing" {
		t.Fatalf("unexpected map %+v", m)
	}
}
