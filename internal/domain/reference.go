package domain

// Reference data: venues, role records and identification-document types.
// These are owned by simple lookup/create/update/delete collaborators; the
// visit workflow only consumes them.

type Venue struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Timezone     string `json:"timezone"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
}

type VenuePatch struct {
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
	SupervisorID *int64  `json:"supervisor_id,omitempty"`
}

type RoleRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type IDCardType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
