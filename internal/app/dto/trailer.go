package dto

import (
	"time"

	domaintrailers "hitchup/internal/domain/trailers"
)

type TrailerSummary struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

type TrailerCollection struct {
	Items []TrailerSummary `json:"items"`
}

func MapTrailerSummary(trailer *domaintrailers.Trailer) TrailerSummary {
	if trailer == nil {
		return TrailerSummary{}
	}
	return TrailerSummary{
		ID:        string(trailer.ID),
		OwnerID:   string(trailer.Owner),
		Title:     trailer.Title,
		City:      trailer.City,
		State:     string(trailer.State),
		CreatedAt: trailer.CreatedAt,
	}
}

func MapTrailerCollection(trailers []*domaintrailers.Trailer) TrailerCollection {
	items := make([]TrailerSummary, 0, len(trailers))
	for _, t := range trailers {
		items = append(items, MapTrailerSummary(t))
	}
	return TrailerCollection{Items: items}
}
