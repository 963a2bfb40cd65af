package event

import "time"

// Validated is a draft that has passed the commit gate. It exists only
// transiently on the way into the create operation.
type Validated struct {
	Name              string
	Sport             string
	StartsAt          time.Time
	Location          *string
	Description       *string
	VenueNames        []string
	Recurring         bool
	RecurrencePattern *string
}

// Validate runs the commit gate over a draft. Fields are checked in a
// fixed order and the first failing field is reported; failures are
// field-tagged ValidationErrors.
func Validate(d Draft) (*Validated, error) {
	if d.Name == "" {
		return nil, NewValidationError("name", "event name is required")
	}
	if len(d.Name) > 200 {
		return nil, NewValidationError("name", "event name exceeds 200 characters")
	}
	if d.Sport == "" {
		return nil, NewValidationError("sport", "sport type is required")
	}
	if len(d.Sport) > 100 {
		return nil, NewValidationError("sport", "sport type exceeds 100 characters")
	}
	if d.StartsAt == nil || d.StartsAt.IsZero() {
		return nil, NewValidationError("startsAt", "a valid event date and time is required")
	}
	if len(d.Description) > 1000 {
		return nil, NewValidationError("description", "description exceeds 1000 characters")
	}
	if len(d.Location) > 200 {
		return nil, NewValidationError("location", "location exceeds 200 characters")
	}
	if len(d.VenueNames) == 0 {
		return nil, NewValidationError("venueNames", "at least one venue is required")
	}
	if len(d.RecurrencePattern) > 200 {
		return nil, NewValidationError("recurrencePattern", "recurrence pattern exceeds 200 characters")
	}

	v := &Validated{
		Name:       d.Name,
		Sport:      d.Sport,
		StartsAt:   *d.StartsAt,
		VenueNames: append([]string(nil), d.VenueNames...),
		Recurring:  d.Recurring,
	}
	if d.Location != "" {
		loc := d.Location
		v.Location = &loc
	}
	if d.Description != "" {
		desc := d.Description
		v.Description = &desc
	}
	if d.RecurrencePattern != "" {
		rp := d.RecurrencePattern
		v.RecurrencePattern = &rp
	}
	return v, nil
}
