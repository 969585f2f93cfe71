package export

import (
	"fmt"
	"strconv"

	"github.com/ignite/assoc-admin/internal/domain"
)

// MemberColumns is the membership directory export layout.
var MemberColumns = []Column[domain.Member]{
	{"First name", func(m domain.Member) string { return m.FirstName }},
	{"Last name", func(m domain.Member) string { return m.LastName }},
	{"Email", func(m domain.Member) string { return m.Email }},
	{"Phone", func(m domain.Member) string { return m.Phone }},
	{"Organization", func(m domain.Member) string { return m.Organization }},
	{"Membership type", func(m domain.Member) string { return m.MembershipType }},
	{"Status", func(m domain.Member) string { return string(m.Status) }},
	{"Join date", func(m domain.Member) string { return date(m.JoinDate) }},
	{"Expiry date", func(m domain.Member) string { return date(m.ExpiryDate) }},
	{"Last payment", func(m domain.Member) string { return datePtr(m.LastPaymentAt) }},
	{"Total paid", func(m domain.Member) string { return cents(m.TotalPaidCents) }},
}

// SpecialistColumns is the specialist directory export layout.
var SpecialistColumns = []Column[domain.Specialist]{
	{"First name", func(s domain.Specialist) string { return s.FirstName }},
	{"Last name", func(s domain.Specialist) string { return s.LastName }},
	{"Email", func(s domain.Specialist) string { return s.Email }},
	{"Phone", func(s domain.Specialist) string { return s.Phone }},
	{"Specialty", func(s domain.Specialist) string { return s.Specialty }},
	{"Region", func(s domain.Specialist) string { return s.Region }},
	{"City", func(s domain.Specialist) string { return s.City }},
	{"Website", func(s domain.Specialist) string { return s.Website }},
	{"Visible", func(s domain.Specialist) string { return yesNo(s.IsVisible) }},
	{"Listed since", func(s domain.Specialist) string { return date(s.CreatedAt) }},
}

// SubscriberColumns is the newsletter audience export layout.
var SubscriberColumns = []Column[domain.Subscriber]{
	{"Email", func(s domain.Subscriber) string { return s.Email }},
	{"First name", func(s domain.Subscriber) string { return s.FirstName }},
	{"Last name", func(s domain.Subscriber) string { return s.LastName }},
	{"Status", func(s domain.Subscriber) string { return s.ActivityStatus() }},
	{"Subscribed", func(s domain.Subscriber) string { return date(s.SubscribedAt) }},
	{"Unsubscribed", func(s domain.Subscriber) string { return datePtr(s.UnsubscribedAt) }},
}

// MembershipApplicationColumns is the membership application export layout.
var MembershipApplicationColumns = []Column[domain.MembershipApplication]{
	{"First name", func(a domain.MembershipApplication) string { return a.FirstName }},
	{"Last name", func(a domain.MembershipApplication) string { return a.LastName }},
	{"Email", func(a domain.MembershipApplication) string { return a.Email }},
	{"Phone", func(a domain.MembershipApplication) string { return a.Phone }},
	{"Organization", func(a domain.MembershipApplication) string { return a.Organization }},
	{"Position", func(a domain.MembershipApplication) string { return a.Position }},
	{"Membership type", func(a domain.MembershipApplication) string { return a.MembershipType }},
	{"Status", func(a domain.MembershipApplication) string { return string(a.Status) }},
	{"Submitted", func(a domain.MembershipApplication) string { return date(a.CreatedAt) }},
}

// SpecialistApplicationColumns is the specialist application export layout.
var SpecialistApplicationColumns = []Column[domain.SpecialistApplication]{
	{"First name", func(a domain.SpecialistApplication) string { return a.FirstName }},
	{"Last name", func(a domain.SpecialistApplication) string { return a.LastName }},
	{"Email", func(a domain.SpecialistApplication) string { return a.Email }},
	{"Phone", func(a domain.SpecialistApplication) string { return a.Phone }},
	{"Specialty", func(a domain.SpecialistApplication) string { return a.Specialty }},
	{"Region", func(a domain.SpecialistApplication) string { return a.Region }},
	{"License number", func(a domain.SpecialistApplication) string { return a.LicenseNumber }},
	{"Years of experience", func(a domain.SpecialistApplication) string { return strconv.Itoa(a.YearsExperience) }},
	{"Status", func(a domain.SpecialistApplication) string { return string(a.Status) }},
	{"Submitted", func(a domain.SpecialistApplication) string { return date(a.CreatedAt) }},
}

func cents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
