package model

import "time"

type Property struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	OwnerFullName    string    `json:"owner_full_name"`
	OwnerPhone       string    `json:"owner_phone"`
	Title            string    `json:"title"`
	City             string    `json:"city"`
	MonthlyRentCedis int       `json:"monthly_rent_cedis"`
	Available        bool      `json:"available"`
	CreatedAt        time.Time `json:"created_at"`
}

// OwnerContact is the disclosed slice of a property returned by a
// successful unlock.
type OwnerContact struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (p Property) Contact() OwnerContact {
	return OwnerContact{
		ID:       p.OwnerID,
		FullName: p.OwnerFullName,
		Phone:    p.OwnerPhone,
	}
}
