package entity

import "time"

// Assembly is a local chapter of the organization. Code is the two-digit
// identifier embedded in generated member numbers.
type Assembly struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	City      string    `json:"city,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
