package model

import "mime/multipart"

// School is a registered school record. Records are created and deleted,
// never updated.
type School struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Contact string `json:"contact"`
	Image   string `json:"image"`
	EmailID string `json:"email_id"`
}

// SchoolFields are the six text fields a client supplies when registering a school.
type SchoolFields struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Contact string `json:"contact"`
	EmailID string `json:"email_id"`
}

// CreateSchoolRequest is the multipart payload of POST /add-school.
type CreateSchoolRequest struct {
	Name    string                `form:"name" binding:"required"`
	Address string                `form:"address" binding:"required"`
	City    string                `form:"city" binding:"required"`
	State   string                `form:"state" binding:"required"`
	Contact string                `form:"contact" binding:"required"`
	EmailID string                `form:"email_id" binding:"required"`
	Image   *multipart.FileHeader `form:"image" binding:"required"`
}

// Fields returns the text part of the request.
func (r *CreateSchoolRequest) Fields() SchoolFields {
	return SchoolFields{
		Name:    r.Name,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		Contact: r.Contact,
		EmailID: r.EmailID,
	}
}

// NewSchool builds a record from submitted fields and the public image path.
func NewSchool(f SchoolFields, imagePath string) *School {
	return &School{
		Name:    f.Name,
		Address: f.Address,
		City:    f.City,
		State:   f.State,
		Contact: f.Contact,
		Image:   imagePath,
		EmailID: f.EmailID,
	}
}

// CreateSchoolResponse is returned by POST /add-school.
type CreateSchoolResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// MessageResponse is returned by DELETE /delete-school/:id.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	OK    bool   `json:"ok"`
	DB    bool   `json:"db"`
	Error string `json:"error,omitempty"`
}

// MissingFields returns the wire names of empty fields, in form order.
func (f SchoolFields) MissingFields() []string {
	var missing []string
	for _, fv := range []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"contact", f.Contact},
		{"email_id", f.EmailID},
	} {
		if fv.value == "" {
			missing = append(missing, fv.name)
		}
	}
	return missing
}
