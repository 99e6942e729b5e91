package domain

import "time"

type AccessStatus string

const (
	AccessActive AccessStatus = "active"
	AccessClosed AccessStatus = "closed"
)

func ParseAccessStatus(s string) (AccessStatus, bool) {
	switch AccessStatus(s) {
	case AccessActive, AccessClosed:
		return AccessStatus(s), true
	default:
		return "", false
	}
}

// Access is one on-site presence episode for a visitor at a venue. The only
// status transition is active -> closed, taken exactly once by marking the
// exit. The document type recorded here is the one presented at this access
// and may differ from the visitor's stored default.
type Access struct {
	ID                   int64        `json:"id"`
	VenueID              int64        `json:"venue_id"`
	VisitorID            int64        `json:"visitor_id"`
	IDCardTypeID         int64        `json:"id_card_type_id"`
	IDCardNumberAtAccess string       `json:"id_card_number_at_access"`
	LoggedByUserID       int64        `json:"logged_by_user_id"`
	EntryTime            time.Time    `json:"entry_time"`
	ExitTime             *time.Time   `json:"exit_time,omitempty"`
	Reason               string       `json:"reason"`
	Department           *string      `json:"department,omitempty"`
	IsRecurrent          bool         `json:"is_recurrent"`
	Status               AccessStatus `json:"status"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (a *Access) IsActive() bool {
	return a.Status == AccessActive
}

// AccessView is the flat read-side projection of an Access joined with the
// names a front desk displays.
type AccessView struct {
	Access
	VisitorName     string `json:"visitor_name"`
	VisitorLastName string `json:"visitor_last_name"`
	VenueName       string `json:"venue_name"`
	IDCardTypeName  string `json:"id_card_type_name"`
	LoggedByName    string `json:"logged_by_name"`
}

type CreateAccessRequest struct {
	VenueID              int64   `json:"venue_id"`
	VisitorID            int64   `json:"visitor_id"`
	IDCardTypeID         int64   `json:"id_card_type_id"`
	IDCardNumberAtAccess string  `json:"id_card_number_at_access"`
	Reason               string  `json:"reason"`
	Department           *string `json:"department,omitempty"`
	IsRecurrent          bool    `json:"is_recurrent"`
}

// AccessPatch corrects descriptive fields. Status is deliberately absent:
// it only changes through the exit transition.
type AccessPatch struct {
	Reason      *string `json:"reason,omitempty"`
	Department  *string `json:"department,omitempty"`
	IsRecurrent *bool   `json:"is_recurrent,omitempty"`
}

// AccessFilters narrows a ledger listing. DateExact matches the calendar day
// of the entry timestamp. VenueID is forced to the caller's venue for
// non-administrators before the query runs.
type AccessFilters struct {
	VenueID         *int64
	DateExact       *time.Time
	IDCardSubstring string
	Limit           int
	Offset          int
}

// RegisterVisitRequest is the full front-desk check-in payload: visitor
// identity plus the access being opened.
type RegisterVisitRequest struct {
	Name         string `json:"name"`
	LastName     string `json:"last_name"`
	IDCardNumber string `json:"id_card_number"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	IDCardTypeID int64  `json:"id_card_type_id"`
	VenueID      int64  `json:"venue_id"`
	VisitDate    string `json:"visit_date"` // 2006-01-02
	EntryTime    string `json:"entry_time"` // 15:04
	Reason       string `json:"reason"`
}

func (r *RegisterVisitRequest) Validate() error {
	if r.Name == "" || r.IDCardNumber == "" || r.Reason == "" {
		return ErrInvalidInput
	}
	if r.IDCardTypeID == 0 || r.VenueID == 0 {
		return ErrInvalidInput
	}
	if r.VisitDate == "" || r.EntryTime == "" {
		return ErrInvalidInput
	}
	return nil
}

// EntryTimestamp combines the supplied date and wall-clock time in UTC.
func (r *RegisterVisitRequest) EntryTimestamp() (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", r.VisitDate+" "+r.EntryTime)
	if err != nil {
		return time.Time{}, ErrInvalidInput
	}
	return t.UTC(), nil
}
