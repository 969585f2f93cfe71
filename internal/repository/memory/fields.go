package memory

import (
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
)

// The sort keys below mirror the Columns maps in repository/postgres.

var membershipAppFields = listing.Fields[domain.MembershipApplication]{
	Search: []func(domain.MembershipApplication) string{
		func(a domain.MembershipApplication) string { return a.FirstName },
		func(a domain.MembershipApplication) string { return a.LastName },
		func(a domain.MembershipApplication) string { return a.Email },
		func(a domain.MembershipApplication) string { return a.Organization },
	},
	Status: func(a domain.MembershipApplication) string { return string(a.Status) },
	Sort: map[string]func(a, b domain.MembershipApplication) int{
		"name":         listing.ByString(func(a domain.MembershipApplication) string { return a.LastName + " " + a.FirstName }),
		"email":        listing.ByString(func(a domain.MembershipApplication) string { return a.Email }),
		"organization": listing.ByString(func(a domain.MembershipApplication) string { return a.Organization }),
		"status":       listing.ByString(func(a domain.MembershipApplication) string { return string(a.Status) }),
		"created_at":   listing.ByTime(func(a domain.MembershipApplication) time.Time { return a.CreatedAt }),
	},
}

var specialistAppFields = listing.Fields[domain.SpecialistApplication]{
	Search: []func(domain.SpecialistApplication) string{
		func(a domain.SpecialistApplication) string { return a.FirstName },
		func(a domain.SpecialistApplication) string { return a.LastName },
		func(a domain.SpecialistApplication) string { return a.Email },
		func(a domain.SpecialistApplication) string { return a.Specialty },
		func(a domain.SpecialistApplication) string { return a.Region },
	},
	Status: func(a domain.SpecialistApplication) string { return string(a.Status) },
	Sort: map[string]func(a, b domain.SpecialistApplication) int{
		"name":       listing.ByString(func(a domain.SpecialistApplication) string { return a.LastName + " " + a.FirstName }),
		"email":      listing.ByString(func(a domain.SpecialistApplication) string { return a.Email }),
		"specialty":  listing.ByString(func(a domain.SpecialistApplication) string { return a.Specialty }),
		"region":     listing.ByString(func(a domain.SpecialistApplication) string { return a.Region }),
		"status":     listing.ByString(func(a domain.SpecialistApplication) string { return string(a.Status) }),
		"created_at": listing.ByTime(func(a domain.SpecialistApplication) time.Time { return a.CreatedAt }),
	},
}

var memberFields = listing.Fields[domain.Member]{
	Search: []func(domain.Member) string{
		func(m domain.Member) string { return m.FirstName },
		func(m domain.Member) string { return m.LastName },
		func(m domain.Member) string { return m.Email },
		func(m domain.Member) string { return m.Organization },
	},
	Status: func(m domain.Member) string { return string(m.Status) },
	Sort: map[string]func(a, b domain.Member) int{
		"name":            listing.ByString(func(m domain.Member) string { return m.LastName + " " + m.FirstName }),
		"email":           listing.ByString(func(m domain.Member) string { return m.Email }),
		"organization":    listing.ByString(func(m domain.Member) string { return m.Organization }),
		"membership_type": listing.ByString(func(m domain.Member) string { return m.MembershipType }),
		"join_date":       listing.ByTime(func(m domain.Member) time.Time { return m.JoinDate }),
		"expiry_date":     listing.ByTime(func(m domain.Member) time.Time { return m.ExpiryDate }),
		"total_paid":      listing.ByOrdered(func(m domain.Member) int64 { return m.TotalPaidCents }),
	},
}

var specialistFields = listing.Fields[domain.Specialist]{
	Search: []func(domain.Specialist) string{
		func(s domain.Specialist) string { return s.FirstName },
		func(s domain.Specialist) string { return s.LastName },
		func(s domain.Specialist) string { return s.Specialty },
		func(s domain.Specialist) string { return s.Region },
		func(s domain.Specialist) string { return s.City },
	},
	Status: domain.Specialist.VisibilityStatus,
	Sort: map[string]func(a, b domain.Specialist) int{
		"name":       listing.ByString(func(s domain.Specialist) string { return s.LastName + " " + s.FirstName }),
		"specialty":  listing.ByString(func(s domain.Specialist) string { return s.Specialty }),
		"region":     listing.ByString(func(s domain.Specialist) string { return s.Region }),
		"city":       listing.ByString(func(s domain.Specialist) string { return s.City }),
		"created_at": listing.ByTime(func(s domain.Specialist) time.Time { return s.CreatedAt }),
	},
}

var newsletterFields = listing.Fields[domain.Newsletter]{
	Search: []func(domain.Newsletter) string{
		func(n domain.Newsletter) string { return n.Title },
		func(n domain.Newsletter) string { return n.Subject },
	},
	Status: func(n domain.Newsletter) string { return string(n.Status) },
	Sort: map[string]func(a, b domain.Newsletter) int{
		"title":      listing.ByString(func(n domain.Newsletter) string { return n.Title }),
		"status":     listing.ByString(func(n domain.Newsletter) string { return string(n.Status) }),
		"created_at": listing.ByTime(func(n domain.Newsletter) time.Time { return n.CreatedAt }),
		"scheduled_at": listing.ByTime(func(n domain.Newsletter) time.Time {
			if n.ScheduledAt == nil {
				return time.Time{}
			}
			return *n.ScheduledAt
		}),
		"sent_at": listing.ByTime(func(n domain.Newsletter) time.Time {
			if n.SentAt == nil {
				return time.Time{}
			}
			return *n.SentAt
		}),
	},
}

var subscriberFields = listing.Fields[domain.Subscriber]{
	Search: []func(domain.Subscriber) string{
		func(s domain.Subscriber) string { return s.Email },
		func(s domain.Subscriber) string { return s.FirstName },
		func(s domain.Subscriber) string { return s.LastName },
	},
	Status: domain.Subscriber.ActivityStatus,
	Sort: map[string]func(a, b domain.Subscriber) int{
		"email":         listing.ByString(func(s domain.Subscriber) string { return s.Email }),
		"name":          listing.ByString(func(s domain.Subscriber) string { return s.LastName + " " + s.FirstName }),
		"subscribed_at": listing.ByTime(func(s domain.Subscriber) time.Time { return s.SubscribedAt }),
	},
}

var publicationFields = listing.Fields[domain.Publication]{
	Search: []func(domain.Publication) string{
		func(p domain.Publication) string { return p.Title },
		func(p domain.Publication) string { return p.Authors },
		func(p domain.Publication) string { return p.Category },
	},
	Status: func(p domain.Publication) string { return string(p.Status) },
	Sort: map[string]func(a, b domain.Publication) int{
		"title":      listing.ByString(func(p domain.Publication) string { return p.Title }),
		"authors":    listing.ByString(func(p domain.Publication) string { return p.Authors }),
		"category":   listing.ByString(func(p domain.Publication) string { return p.Category }),
		"status":     listing.ByString(func(p domain.Publication) string { return string(p.Status) }),
		"created_at": listing.ByTime(func(p domain.Publication) time.Time { return p.CreatedAt }),
	},
}
