package event

import (
	"reflect"
	"testing"
	"time"
)

func TestMergePatch_LastNonEmptyWins(t *testing.T) {
	d := MergePatch(Draft{}, Patch{Name: "  Spring Cup  ", Sport: "Soccer"})
	if d.Name != "Spring Cup" {
		t.Fatalf("expected trimmed name, got %q", d.Name)
	}
	if d.Sport != "Soccer" {
		t.Fatalf("expected sport, got %q", d.Sport)
	}

	d = MergePatch(d, Patch{Name: "Autumn Cup"})
	if d.Name != "Autumn Cup" {
		t.Fatalf("expected overwrite with new non-empty value, got %q", d.Name)
	}
	if d.Sport != "Soccer" {
		t.Fatalf("untouched field must survive merge, got %q", d.Sport)
	}
}

func TestMergePatch_EmptyValueNeverClearsField(t *testing.T) {
	d := MergePatch(Draft{}, Patch{Name: "Cup"})
	d = MergePatch(d, Patch{Name: ""})
	if d.Name != "Cup" {
		t.Fatalf("empty extraction must not clear a present field, got %q", d.Name)
	}
	d = MergePatch(d, Patch{Name: "   "})
	if d.Name != "Cup" {
		t.Fatalf("whitespace extraction must not clear a present field, got %q", d.Name)
	}
}

func TestMergePatch_IdempotentPerField(t *testing.T) {
	p := Patch{
		Name:       "Cup",
		Sport:      "Tennis",
		StartsAt:   "2025-03-15T14:00",
		VenueNames: []string{"Court A", "Court B"},
	}
	once := MergePatch(Draft{}, p)
	twice := MergePatch(once, p)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergePatch_PureFunction(t *testing.T) {
	base := Draft{Name: "Cup", VenueNames: []string{"Court A"}}
	_ = MergePatch(base, Patch{Name: "Other", VenueNames: []string{"Court B"}})
	if base.Name != "Cup" || len(base.VenueNames) != 1 {
		t.Fatalf("input draft was mutated: %+v", base)
	}
}

func TestMergePatch_VenueDeduplication(t *testing.T) {
	d := MergePatch(Draft{}, Patch{VenueNames: []string{"Court A", "Court A", " Court B "}})
	want := []string{"Court A", "Court B"}
	if !reflect.DeepEqual(d.VenueNames, want) {
		t.Fatalf("expected %v, got %v", want, d.VenueNames)
	}

	// case-sensitive: different casing is a different venue
	d = MergePatch(d, Patch{VenueNames: []string{"court a"}})
	want = []string{"Court A", "Court B", "court a"}
	if !reflect.DeepEqual(d.VenueNames, want) {
		t.Fatalf("expected case-sensitive dedupe %v, got %v", want, d.VenueNames)
	}

	// re-adding an existing venue preserves order with no duplicate
	d = MergePatch(d, Patch{VenueNames: []string{"Court A"}})
	if !reflect.DeepEqual(d.VenueNames, want) {
		t.Fatalf("expected unchanged %v, got %v", want, d.VenueNames)
	}
}

func TestMergePatch_UnparseableInstantTreatedAsAbsent(t *testing.T) {
	ts := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	d := Draft{StartsAt: &ts}
	d = MergePatch(d, Patch{StartsAt: "next saturday-ish"})
	if d.StartsAt == nil || !d.StartsAt.Equal(ts) {
		t.Fatalf("unparseable instant must not disturb the stored one, got %v", d.StartsAt)
	}

	fresh := MergePatch(Draft{}, Patch{StartsAt: "not a time"})
	if fresh.StartsAt != nil {
		t.Fatalf("unparseable instant must stay absent, got %v", fresh.StartsAt)
	}
}

func TestParseInstant_LocalAndAbsoluteAgree(t *testing.T) {
	local, err := ParseInstant("2025-03-15T14:00")
	if err != nil {
		t.Fatalf("local form: %v", err)
	}

	// the same wall clock expressed as an absolute instant in the local zone
	wall := time.Date(2025, 3, 15, 14, 0, 0, 0, time.Local)
	abs, err := ParseInstant(wall.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("absolute form: %v", err)
	}

	if !local.Equal(abs) {
		t.Fatalf("round-trip mismatch: local=%v absolute=%v", local, abs)
	}
	if local.Location() != time.UTC {
		t.Fatalf("canonical instant must be UTC, got %v", local.Location())
	}
}

func TestParseInstant_RejectsGarbage(t *testing.T) {
	if _, err := ParseInstant("soon"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestMergePatch_RecurrenceNormalizedToRRule(t *testing.T) {
	d := MergePatch(Draft{}, Patch{RecurrencePattern: "FREQ=WEEKLY;BYDAY=MO"})
	if d.RecurrencePattern == "" {
		t.Fatalf("expected pattern to be stored")
	}
	if got := d.RecurrencePattern; got != "FREQ=WEEKLY;BYDAY=MO" {
		t.Fatalf("expected canonical rrule, got %q", got)
	}

	// free text from extraction passes through untouched
	d = MergePatch(d, Patch{RecurrencePattern: "every Monday at 6 PM"})
	if d.RecurrencePattern != "every Monday at 6 PM" {
		t.Fatalf("free-text pattern mangled: %q", d.RecurrencePattern)
	}
}

func TestMergePatch_RecurringFlag(t *testing.T) {
	yes := true
	d := MergePatch(Draft{}, Patch{Recurring: &yes})
	if !d.Recurring {
		t.Fatalf("expected recurring true")
	}
	// absent pointer leaves the flag alone
	d = MergePatch(d, Patch{})
	if !d.Recurring {
		t.Fatalf("absent recurring must not reset the flag")
	}
}

func TestHasAnySignal(t *testing.T) {
	if (Draft{}).HasAnySignal() {
		t.Fatalf("empty draft has no signal")
	}
	if !(Draft{Name: "Cup"}).HasAnySignal() {
		t.Fatalf("name alone is a signal")
	}
	if !(Draft{Sport: "Tennis"}).HasAnySignal() {
		t.Fatalf("sport alone is a signal")
	}
	ts := time.Now()
	if !(Draft{StartsAt: &ts}).HasAnySignal() {
		t.Fatalf("start time alone is a signal")
	}
	if (Draft{Location: "Gym", VenueNames: []string{"A"}}).HasAnySignal() {
		t.Fatalf("location and venues are not readiness signals")
	}
}
