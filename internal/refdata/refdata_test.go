package refdata

import "testing"

func TestCountryTable(t *testing.T) {
	countries := Countries()

	if countries.Len() < 200 {
		t.Fatalf("suspiciously small ISO table: %d entries", countries.Len())
	}

	for _, code := range []string{"FR", "US", "TW", "fr", "gb"} {
		if !countries.Has(code) {
			t.Errorf("Has(%q) = false", code)
		}
	}
	for _, code := range []string{"XX", "ZZ", "00", ""} {
		if countries.Has(code) {
			t.Errorf("Has(%q) = true", code)
		}
	}
}

func TestCountriesFrom(t *testing.T) {
	tbl := CountriesFrom("fr", "DE")
	if !tbl.Has("FR") || !tbl.Has("de") {
		t.Error("CountriesFrom did not normalize codes")
	}
	if tbl.Has("US") {
		t.Error("unexpected code in explicit table")
	}
}

func TestZonesFrom(t *testing.T) {
	zones := ZonesFrom("UTC", "Europe/Paris", "Asia/Taipei")

	if !zones.Has("Europe/Paris") {
		t.Error("known zone missing")
	}
	if zones.Has("Europe/paris") {
		t.Error("zone lookup must be case-sensitive")
	}
	if zones.Has("Mars/Olympus") {
		t.Error("unknown zone accepted")
	}
}

func TestZonesSystemDatabase(t *testing.T) {
	zones := Zones()
	if zones.Len() == 0 {
		t.Skip("no system tz database on this host")
	}
	if !zones.Has("UTC") {
		t.Error("system database lacks UTC")
	}
}
