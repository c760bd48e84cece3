package prefs

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocationUnset(t *testing.T) {
	s := openTestStore(t)
	loc, err := s.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc != nil {
		t.Fatalf("loc = %+v, want nil when unset", loc)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveLocation(Location{City: "Austin", Country: "US"}); err != nil {
		t.Fatalf("SaveLocation: %v", err)
	}
	loc, err := s.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc == nil || loc.City != "Austin" || loc.Country != "US" {
		t.Fatalf("loc = %+v", loc)
	}
}

func TestSaveRejectsBlankCity(t *testing.T) {
	s := openTestStore(t)
	for _, city := range []string{"", "   ", "\t"} {
		if err := s.SaveLocation(Location{City: city}); err == nil {
			t.Errorf("SaveLocation(%q) should fail", city)
		}
	}
	loc, err := s.Location()
	if err != nil || loc != nil {
		t.Fatalf("store mutated by rejected save: loc=%+v err=%v", loc, err)
	}
}

func TestSaveTrimsWhitespace(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveLocation(Location{City: "  Austin  ", Country: " US "}); err != nil {
		t.Fatalf("SaveLocation: %v", err)
	}
	loc, _ := s.Location()
	if loc.City != "Austin" || loc.Country != "US" {
		t.Fatalf("loc = %+v, want trimmed", loc)
	}
}

func TestOverwrite(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveLocation(Location{City: "Austin"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveLocation(Location{City: "Portland", Country: "US"}); err != nil {
		t.Fatal(err)
	}
	loc, _ := s.Location()
	if loc.City != "Portland" {
		t.Fatalf("loc = %+v, want Portland", loc)
	}
}
