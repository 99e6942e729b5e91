package domain

import "time"

// Visitor is an external person tracked across visits, deduplicated by the
// identification-document number.
type Visitor struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	LastName            string    `json:"last_name"`
	IDCardNumber        string    `json:"id_card_number"`
	Phone               string    `json:"phone"`
	Email               string    `json:"email"`
	IDCardTypeID        int64     `json:"id_card_type_id"`
	RegistrationVenueID int64     `json:"registration_venue_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type CreateVisitorRequest struct {
	Name                string `json:"name"`
	LastName            string `json:"last_name"`
	IDCardNumber        string `json:"id_card_number"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	IDCardTypeID        int64  `json:"id_card_type_id"`
	RegistrationVenueID int64  `json:"registration_venue_id"`
}

// VisitorPatch updates mutable contact fields only. The document number and
// default document type are identity fields and never change through this
// path.
type VisitorPatch struct {
	Name     *string `json:"name,omitempty"`
	LastName *string `json:"last_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}
