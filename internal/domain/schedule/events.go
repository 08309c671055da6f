package schedule

import (
	"time"

	"hitchup/internal/domain/shared/civil"
)

// CalendarBlocked fires when an owner blocks a date range.
type CalendarBlocked struct {
	TrailerID string     `json:"trailer_id"`
	OwnerID   string     `json:"owner_id"`
	Start     civil.Date `json:"start"`
	End       civil.Date `json:"end"`
	Reason    string     `json:"reason,omitempty"`
	At        time.Time  `json:"at"`
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return e.TrailerID }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

// CalendarUnblocked fires when an owner unblocks dates, once per removed
// period.
type CalendarUnblocked struct {
	TrailerID string     `json:"trailer_id"`
	OwnerID   string     `json:"owner_id"`
	Start     civil.Date `json:"start"`
	End       civil.Date `json:"end"`
	At        time.Time  `json:"at"`
}

func (e CalendarUnblocked) EventName() string     { return "calendar.unblocked" }
func (e CalendarUnblocked) AggregateID() string   { return e.TrailerID }
func (e CalendarUnblocked) OccurredAt() time.Time { return e.At }

// CalendarPeriodSplit fires when a partial unblock replaces one period with
// narrower remainders.
type CalendarPeriodSplit struct {
	TrailerID  string       `json:"trailer_id"`
	PeriodID   string       `json:"period_id"`
	Remainders []civil.Date `json:"remainder_starts"`
	At         time.Time    `json:"at"`
}

func (e CalendarPeriodSplit) EventName() string     { return "calendar.period_split" }
func (e CalendarPeriodSplit) AggregateID() string   { return e.TrailerID }
func (e CalendarPeriodSplit) OccurredAt() time.Time { return e.At }

// TemplateUpdated fires when the weekly availability template changes.
type TemplateUpdated struct {
	TrailerID string    `json:"trailer_id"`
	At        time.Time `json:"at"`
}

func (e TemplateUpdated) EventName() string     { return "calendar.template_updated" }
func (e TemplateUpdated) AggregateID() string   { return e.TrailerID }
func (e TemplateUpdated) OccurredAt() time.Time { return e.At }
