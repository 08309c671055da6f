package dto

import (
	"time"

	domainrental "hitchup/internal/domain/rental"
)

type RentalDetail struct {
	ID        string    `json:"id"`
	TrailerID string    `json:"trailer_id"`
	RenterID  string    `json:"renter_id"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RentalCollection struct {
	Items []RentalDetail `json:"items"`
}

func MapRentalDetail(r domainrental.Rental) RentalDetail {
	return RentalDetail{
		ID:        r.ID,
		TrailerID: r.TrailerID,
		RenterID:  r.RenterID,
		Start:     r.Start.String(),
		End:       r.End.String(),
		Status:    string(r.Status),
		UpdatedAt: r.UpdatedAt,
	}
}

func MapRentalCollection(rentals []domainrental.Rental) RentalCollection {
	items := make([]RentalDetail, 0, len(rentals))
	for _, r := range rentals {
		items = append(items, MapRentalDetail(r))
	}
	return RentalCollection{Items: items}
}
