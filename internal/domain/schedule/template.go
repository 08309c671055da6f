package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"hitchup/internal/domain/shared/civil"
)

var (
	ErrUnknownWeekday    = errors.New("schedule: unknown weekday name")
	ErrSlotOrder         = errors.New("schedule: slot start must be before end")
	ErrSlotGranularity   = errors.New("schedule: slot times must be on half-hour boundaries")
	ErrSlotOverlap       = errors.New("schedule: slots within a day must not overlap")
	ErrSlotOutOfDay      = errors.New("schedule: slot outside the rentable day")
	ErrTemplateNotFound  = errors.New("schedule: weekly template not found")
	ErrTrailerIDRequired = errors.New("schedule: trailer id required")
)

// WeekdayNames lists the template keys in Monday-first order.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// WeekdayName maps a time.Weekday to the Monday-first template key.
func WeekdayName(wd time.Weekday) string {
	// time.Weekday is Sunday-first.
	return WeekdayNames[(int(wd)+6)%7]
}

// TemplateSlot is one recurring time-of-day availability window, stored as
// HH:MM:SS strings the way the mobile clients submit them.
type TemplateSlot struct {
	StartTime string `json:"startTime" bson:"start_time"`
	EndTime   string `json:"endTime" bson:"end_time"`
}

func (s TemplateSlot) Range() (ClockRange, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return ClockRange{}, err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return ClockRange{}, err
	}
	return ClockRange{Start: start, End: end}, nil
}

// WeeklyTemplate is the recurring per-weekday availability of one trailer,
// independent of calendar dates. A day with no slots is unavailable by
// default; blocked periods and rentals override it date by date.
type WeeklyTemplate struct {
	TrailerID string
	Days      map[string][]TemplateSlot
	UpdatedAt time.Time
}

// TemplateRepository persists weekly templates.
type TemplateRepository interface {
	ByTrailer(ctx context.Context, trailerID string) (*WeeklyTemplate, error)
	Save(ctx context.Context, template *WeeklyTemplate) error
}

func NewWeeklyTemplate(trailerID string) *WeeklyTemplate {
	days := make(map[string][]TemplateSlot, len(WeekdayNames))
	for _, name := range WeekdayNames {
		days[name] = nil
	}
	return &WeeklyTemplate{TrailerID: trailerID, Days: days}
}

func (t *WeeklyTemplate) Validate() error {
	if strings.TrimSpace(t.TrailerID) == "" {
		return ErrTrailerIDRequired
	}
	for name, slots := range t.Days {
		if !validWeekday(name) {
			return fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		ranges := make([]ClockRange, 0, len(slots))
		for _, slot := range slots {
			if !OnHalfHour(slot.StartTime) || !OnHalfHour(slot.EndTime) {
				return fmt.Errorf("%w: %s-%s on %s", ErrSlotGranularity, slot.StartTime, slot.EndTime, name)
			}
			r, err := slot.Range()
			if err != nil {
				return err
			}
			if !r.Valid() {
				return fmt.Errorf("%w: %s-%s on %s", ErrSlotOrder, slot.StartTime, slot.EndTime, name)
			}
			if r.Start < RentalDayStart || r.End > RentalDayEnd {
				return fmt.Errorf("%w: %s-%s on %s", ErrSlotOutOfDay, slot.StartTime, slot.EndTime, name)
			}
			ranges = append(ranges, r)
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Start < ranges[i-1].End {
				return fmt.Errorf("%w: on %s", ErrSlotOverlap, name)
			}
		}
	}
	return nil
}

// SlotsOn returns the template slots for the weekday of the given date.
func (t *WeeklyTemplate) SlotsOn(d civil.Date) []TemplateSlot {
	if t == nil || t.Days == nil {
		return nil
	}
	return t.Days[WeekdayName(d.Weekday())]
}

// RangesOn resolves the date's slots into typed clock intervals, skipping
// slots that fail to parse.
func (t *WeeklyTemplate) RangesOn(d civil.Date) []ClockRange {
	slots := t.SlotsOn(d)
	if len(slots) == 0 {
		return nil
	}
	ranges := make([]ClockRange, 0, len(slots))
	for _, slot := range slots {
		r, err := slot.Range()
		if err != nil {
			continue
		}
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

// HasAvailabilityOn reports whether the weekday of the date carries at
// least one slot.
func (t *WeeklyTemplate) HasAvailabilityOn(d civil.Date) bool {
	return len(t.SlotsOn(d)) > 0
}

// SetDay replaces a single weekday's slots after validating them in place.
func (t *WeeklyTemplate) SetDay(name string, slots []TemplateSlot, now time.Time) error {
	if !validWeekday(name) {
		return fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
	}
	probe := &WeeklyTemplate{TrailerID: t.TrailerID, Days: map[string][]TemplateSlot{name: slots}}
	if err := probe.Validate(); err != nil {
		return err
	}
	if t.Days == nil {
		t.Days = make(map[string][]TemplateSlot, len(WeekdayNames))
	}
	t.Days[name] = append([]TemplateSlot(nil), slots...)
	t.UpdatedAt = now.UTC()
	return nil
}

func validWeekday(name string) bool {
	for _, candidate := range WeekdayNames {
		if candidate == name {
			return true
		}
	}
	return false
}
