package domain

import "time"

// MemberStatus is derived from expiry_date at read time; it is never stored.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberExpiring MemberStatus = "expiring"
	MemberExpired  MemberStatus = "expired"
)

// ExpiringWindow is how close to expiry a membership counts as expiring.
const ExpiringWindow = 30 * 24 * time.Hour

// MemberStatusAt derives a member's status from its expiry date.
func MemberStatusAt(expiry, now time.Time) MemberStatus {
	switch {
	case !expiry.After(now):
		return MemberExpired
	case expiry.Sub(now) <= ExpiringWindow:
		return MemberExpiring
	default:
		return MemberActive
	}
}

// Member is a row of the membership directory: the member record joined
// with its payment history.
type Member struct {
	ID             string       `json:"id" db:"id"`
	ApplicationID  string       `json:"application_id" db:"application_id"`
	FirstName      string       `json:"first_name" db:"first_name"`
	LastName       string       `json:"last_name" db:"last_name"`
	Email          string       `json:"email" db:"email"`
	Phone          string       `json:"phone" db:"phone"`
	Organization   string       `json:"organization" db:"organization"`
	MembershipType string       `json:"membership_type" db:"membership_type"`
	JoinDate       time.Time    `json:"join_date" db:"join_date"`
	ExpiryDate     time.Time    `json:"expiry_date" db:"expiry_date"`
	Status         MemberStatus `json:"status" db:"status"`
	LastPaymentAt  *time.Time   `json:"last_payment_at,omitempty" db:"last_payment_at"`
	TotalPaidCents int64        `json:"total_paid_cents" db:"total_paid_cents"`
	PaymentCount   int          `json:"payment_count" db:"payment_count"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// FullName joins first and last name.
func (m Member) FullName() string {
	return joinName(m.FirstName, m.LastName)
}

// MemberFromApplication builds the directory copy inserted on approval.
// Membership runs one year from the approval time.
func MemberFromApplication(id string, a MembershipApplication, approvedAt time.Time) Member {
	return Member{
		ID:             id,
		ApplicationID:  a.ID,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Phone:          a.Phone,
		Organization:   a.Organization,
		MembershipType: a.MembershipType,
		JoinDate:       approvedAt,
		ExpiryDate:     approvedAt.AddDate(1, 0, 0),
		Status:         MemberActive,
		CreatedAt:      approvedAt,
	}
}

// Payment is one membership fee payment.
type Payment struct {
	ID          string    `json:"id" db:"id"`
	MemberID    string    `json:"member_id" db:"member_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Method      string    `json:"method" db:"method"`
	Reference   string    `json:"reference" db:"reference"`
	PaidAt      time.Time `json:"paid_at" db:"paid_at"`
}

// RenewedExpiry returns the expiry date after a one-year renewal paid at now.
// Renewal stacks on an unexpired membership and restarts an expired one.
func RenewedExpiry(current, now time.Time) time.Time {
	base := current
	if now.After(base) {
		base = now
	}
	return base.AddDate(1, 0, 0)
}

// MemberStats aggregates the directory for the dashboard.
type MemberStats struct {
	Total            int   `json:"total"`
	Active           int   `json:"active"`
	Expiring         int   `json:"expiring"`
	Expired          int   `json:"expired"`
	RevenueCentsYTD  int64 `json:"revenue_cents_ytd"`
	PaymentsCountYTD int   `json:"payments_count_ytd"`
}

// Specialist is a row of the specialist directory.
type Specialist struct {
	ID            string    `json:"id" db:"id"`
	ApplicationID string    `json:"application_id" db:"application_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Specialty     string    `json:"specialty" db:"specialty"`
	Region        string    `json:"region" db:"region"`
	City          string    `json:"city" db:"city"`
	Bio           string    `json:"bio" db:"bio"`
	Website       string    `json:"website" db:"website"`
	IsVisible     bool      `json:"is_visible" db:"is_visible"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// FullName joins first and last name.
func (s Specialist) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// VisibilityStatus maps IsVisible onto the status filter vocabulary.
func (s Specialist) VisibilityStatus() string {
	if s.IsVisible {
		return "visible"
	}
	return "hidden"
}

// SpecialistFromApplication builds the directory copy inserted on approval.
// New specialists are visible immediately.
func SpecialistFromApplication(id string, a SpecialistApplication, approvedAt time.Time) Specialist {
	return Specialist{
		ID:            id,
		ApplicationID: a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		Phone:         a.Phone,
		Specialty:     a.Specialty,
		Region:        a.Region,
		City:          a.City,
		Bio:           a.Bio,
		Website:       a.Website,
		IsVisible:     true,
		CreatedAt:     approvedAt,
	}
}
