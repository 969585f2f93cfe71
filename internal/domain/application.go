package domain

import "time"

// ApplicationKind selects which application table and directory an
// operation targets.
type ApplicationKind string

const (
	KindMembership ApplicationKind = "membership"
	KindSpecialist ApplicationKind = "specialist"
)

// Valid reports whether k is a known application kind.
func (k ApplicationKind) Valid() bool {
	return k == KindMembership || k == KindSpecialist
}

// ApplicationStatus enumerates the review states of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// MembershipApplication is a request to join the association.
type MembershipApplication struct {
	ID              string            `json:"id" db:"id"`
	FirstName       string            `json:"first_name" db:"first_name"`
	LastName        string            `json:"last_name" db:"last_name"`
	Email           string            `json:"email" db:"email"`
	Phone           string            `json:"phone" db:"phone"`
	Organization    string            `json:"organization" db:"organization"`
	Position        string            `json:"position" db:"position"`
	MembershipType  string            `json:"membership_type" db:"membership_type"`
	Motivation      string            `json:"motivation" db:"motivation"`
	Status          ApplicationStatus `json:"status" db:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      string            `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name.
func (a MembershipApplication) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

// SpecialistApplication is a request to be listed in the specialist directory.
type SpecialistApplication struct {
	ID              string            `json:"id" db:"id"`
	FirstName       string            `json:"first_name" db:"first_name"`
	LastName        string            `json:"last_name" db:"last_name"`
	Email           string            `json:"email" db:"email"`
	Phone           string            `json:"phone" db:"phone"`
	Specialty       string            `json:"specialty" db:"specialty"`
	Region          string            `json:"region" db:"region"`
	City            string            `json:"city" db:"city"`
	LicenseNumber   string            `json:"license_number" db:"license_number"`
	YearsExperience int               `json:"years_experience" db:"years_experience"`
	Bio             string            `json:"bio" db:"bio"`
	Website         string            `json:"website" db:"website"`
	Status          ApplicationStatus `json:"status" db:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      string            `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name.
func (a SpecialistApplication) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

// ApplicationCounts summarises one application table by status.
type ApplicationCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
