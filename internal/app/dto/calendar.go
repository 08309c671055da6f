package dto

import (
	"time"

	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
)

type CalendarDay struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	RentalID string `json:"rental_id,omitempty"`
}

type CalendarMonth struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

type Calendar struct {
	TrailerID   string          `json:"trailer_id"`
	WindowFirst string          `json:"window_first"`
	WindowLast  string          `json:"window_last"`
	CanGoPrev   bool            `json:"can_go_prev"`
	CanGoNext   bool            `json:"can_go_next"`
	Months      []CalendarMonth `json:"months"`
}

type BlockedPeriodDTO struct {
	ID        string    `json:"id"`
	TrailerID string    `json:"trailer_id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BlockRangeResult struct {
	Created []BlockedPeriodDTO `json:"created"`
}

type UnblockRangeResult struct {
	Removed []string           `json:"removed"`
	Created []BlockedPeriodDTO `json:"created"`
}

func MapBlockedPeriod(period domainschedule.BlockedPeriod) BlockedPeriodDTO {
	return BlockedPeriodDTO{
		ID:        period.ID,
		TrailerID: period.TrailerID,
		Start:     period.Start.String(),
		End:       period.End.String(),
		Reason:    period.Reason,
		CreatedAt: period.CreatedAt,
	}
}

func MapBlockedPeriods(periods []domainschedule.BlockedPeriod) []BlockedPeriodDTO {
	out := make([]BlockedPeriodDTO, 0, len(periods))
	for _, p := range periods {
		out = append(out, MapBlockedPeriod(p))
	}
	return out
}

func MapCalendarMonth(m civil.Month, resolve func(civil.Date) (domainschedule.DayStatus, string)) CalendarMonth {
	days := domainschedule.MonthDays(m)
	out := CalendarMonth{Year: m.Year, Month: int(m.Month), Days: make([]CalendarDay, 0, len(days))}
	for _, d := range days {
		status, rentalID := resolve(d)
		out.Days = append(out.Days, CalendarDay{
			Date:     d.String(),
			Status:   string(status),
			RentalID: rentalID,
		})
	}
	return out
}
