// Package models defines the core domain models for lead management and workflow automation.
package models

import "time"

// LeadStatus represents the pipeline state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"       // Freshly captured, not yet reached out to
	LeadStatusContacted LeadStatus = "contacted" // At least one outreach action has run
)

// Lead represents a captured sales lead.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"   validate:"required,min=1"`
	Email     string     `json:"email"  validate:"required,email"`
	Phone     string     `json:"phone,omitempty"`
	Status    LeadStatus `json:"status"`
	Source    string     `json:"source,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// LeadUpdate is a partial update applied to a stored lead. Nil fields are
// left untouched.
type LeadUpdate struct {
	Name   *string     `json:"name,omitempty"`
	Email  *string     `json:"email,omitempty"  validate:"omitempty,email"`
	Phone  *string     `json:"phone,omitempty"`
	Status *LeadStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted"`
	Source *string     `json:"source,omitempty"`
}

// Apply copies the non-nil fields of the update onto the lead.
func (u LeadUpdate) Apply(lead *Lead) {
	if u.Name != nil {
		lead.Name = *u.Name
	}

	if u.Email != nil {
		lead.Email = *u.Email
	}

	if u.Phone != nil {
		lead.Phone = *u.Phone
	}

	if u.Status != nil {
		lead.Status = *u.Status
	}

	if u.Source != nil {
		lead.Source = *u.Source
	}
}
