package entity

import "github.com/google/uuid"

// Box is the single gym this deployment serves
type Box struct {
	BaseNoDelete
	Name    string    `db:"name"`
	Address *string   `db:"address"`
	OwnerID uuid.UUID `db:"owner_id"`
}
