package dto

import (
	domainschedule "hitchup/internal/domain/schedule"
)

type SelectionState struct {
	SessionID  string   `json:"session_id"`
	TrailerID  string   `json:"trailer_id"`
	Selected   []string `json:"selected"`
	Dragging   bool     `json:"dragging"`
	CanBlock   int      `json:"can_block"`
	CanUnblock int      `json:"can_unblock"`
	AllBlocked bool     `json:"all_blocked"`
}

func MapSelectionState(sessionID, trailerID string, sel *domainschedule.Selection, c domainschedule.Classification) SelectionState {
	dates := sel.Selected()
	selected := make([]string, 0, len(dates))
	for _, d := range dates {
		selected = append(selected, d.String())
	}
	return SelectionState{
		SessionID:  sessionID,
		TrailerID:  trailerID,
		Selected:   selected,
		Dragging:   sel.Dragging(),
		CanBlock:   c.CanBlock,
		CanUnblock: c.CanUnblock,
		AllBlocked: c.AllBlocked,
	}
}
