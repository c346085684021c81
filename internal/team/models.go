package team

import "time"

// Team is a named group owned by exactly one agency account. Names are
// unique within the owning agency.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AgencyID  string    `json:"agencyId"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
