// Package event defines the structured event draft, its normalization and
// merge rules, the commit-time validation gate, and the event domain
// service backed by the storage layer.
package event

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Draft is the partial event record accumulated across a conversation.
// Present string fields are always trimmed and non-empty; an empty string
// means the field is absent. StartsAt, when set, is a canonical UTC instant.
type Draft struct {
	Name              string
	Sport             string
	StartsAt          *time.Time
	Location          string
	Description       string
	VenueNames        []string
	Recurring         bool
	RecurrencePattern string
}

// Patch carries fields extracted from one assistant reply. The JSON keys
// follow the completion-service contract; unrecognized keys are dropped
// during decoding. All values are raw: Normalize them before merging.
type Patch struct {
	Name              string   `json:"name"`
	Sport             string   `json:"sport"`
	StartsAt          string   `json:"dateTime"`
	Location          string   `json:"location"`
	Description       string   `json:"description"`
	VenueNames        []string `json:"venueNames"`
	Recurring         *bool    `json:"isRecurring"`
	RecurrencePattern string   `json:"recurrencePattern"`
}

// IsEmpty reports whether the patch carries no usable field at all.
func (p Patch) IsEmpty() bool {
	return strings.TrimSpace(p.Name) == "" &&
		strings.TrimSpace(p.Sport) == "" &&
		strings.TrimSpace(p.StartsAt) == "" &&
		strings.TrimSpace(p.Location) == "" &&
		strings.TrimSpace(p.Description) == "" &&
		len(p.VenueNames) == 0 &&
		p.Recurring == nil &&
		strings.TrimSpace(p.RecurrencePattern) == ""
}

// instantLayouts are the accepted datetime-local forms, tried in order
// after RFC3339. They carry no zone and are interpreted in local time.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseInstant canonicalizes a date/time string to a UTC instant. It
// accepts an absolute RFC3339 instant or a zone-less datetime-local form.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	var lastErr error
	for _, layout := range instantLayouts {
		ts, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// MergePatch merges a normalized patch into a draft and returns the new
// draft. Pure function: neither argument is mutated. Per field the last
// non-empty value wins; an empty or unparseable extracted value never
// clears a present field. Venue names are accumulated as an ordered,
// case-sensitively deduplicated set.
func MergePatch(d Draft, p Patch) Draft {
	out := d
	out.VenueNames = append([]string(nil), d.VenueNames...)

	if v := strings.TrimSpace(p.Name); v != "" {
		out.Name = v
	}
	if v := strings.TrimSpace(p.Sport); v != "" {
		out.Sport = v
	}
	if v := strings.TrimSpace(p.StartsAt); v != "" {
		// Unparseable instants are treated as absent on merge; the
		// validation gate is where a missing instant becomes an error.
		if ts, err := ParseInstant(v); err == nil {
			out.StartsAt = &ts
		}
	}
	if v := strings.TrimSpace(p.Location); v != "" {
		out.Location = v
	}
	if v := strings.TrimSpace(p.Description); v != "" {
		out.Description = v
	}
	for _, name := range p.VenueNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.VenueNames = appendVenue(out.VenueNames, name)
	}
	if p.Recurring != nil {
		out.Recurring = *p.Recurring
	}
	if v := strings.TrimSpace(p.RecurrencePattern); v != "" {
		out.RecurrencePattern = normalizeRecurrence(v)
	}
	return out
}

// appendVenue adds name unless already present, preserving insertion order.
func appendVenue(names []string, name string) []string {
	for _, existing := range names {
		if existing == name {
			return names
		}
	}
	return append(names, name)
}

// normalizeRecurrence canonicalizes an RRULE string when the pattern
// parses as one; free-text patterns from extraction pass through as-is.
func normalizeRecurrence(v string) string {
	if r, err := rrule.StrToRRule(strings.TrimPrefix(v, "RRULE:")); err == nil {
		return r.String()
	}
	return v
}

// HasAnySignal reports whether the draft carries at least one of the core
// identifying fields. This is the lenient readiness check for showing a
// confirmation summary; the commit gate is Validate.
func (d Draft) HasAnySignal() bool {
	return d.Name != "" || d.Sport != "" || d.StartsAt != nil
}
