package entities

import "time"

// Customer owns identity/contact data and is referenced by id from estimates
// and invoices.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Zip       string    `json:"zip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasIdentity reports whether enough identifying fields exist to create a new
// customer record during an estimate save.
func (c Customer) HasIdentity() bool {
	return c.FirstName != "" || c.LastName != "" || c.Email != ""
}
