package dto

import (
	"time"

	domainschedule "hitchup/internal/domain/schedule"
)

type TemplateSlotDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type WeeklyTemplateDTO struct {
	TrailerID string                       `json:"trailer_id"`
	Days      map[string][]TemplateSlotDTO `json:"days"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

func MapWeeklyTemplate(tpl *domainschedule.WeeklyTemplate) WeeklyTemplateDTO {
	if tpl == nil {
		return WeeklyTemplateDTO{}
	}
	days := make(map[string][]TemplateSlotDTO, len(tpl.Days))
	for _, name := range domainschedule.WeekdayNames {
		slots, ok := tpl.Days[name]
		if !ok {
			continue
		}
		mapped := make([]TemplateSlotDTO, 0, len(slots))
		for _, slot := range slots {
			mapped = append(mapped, TemplateSlotDTO{StartTime: slot.StartTime, EndTime: slot.EndTime})
		}
		days[name] = mapped
	}
	return WeeklyTemplateDTO{
		TrailerID: tpl.TrailerID,
		Days:      days,
		UpdatedAt: tpl.UpdatedAt,
	}
}

func TemplateSlotsFromDTO(slots []TemplateSlotDTO) []domainschedule.TemplateSlot {
	out := make([]domainschedule.TemplateSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, domainschedule.TemplateSlot{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}
	return out
}
