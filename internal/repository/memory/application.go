package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/application"
)

// ApplicationRepo implements application.Repository in memory.
type ApplicationRepo struct{ s *Store }

func (r *ApplicationRepo) ListMembership(_ context.Context, q listing.Query) (listing.Page[domain.MembershipApplication], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.membershipApps,
		func(a domain.MembershipApplication) time.Time { return a.CreatedAt },
		func(a domain.MembershipApplication) string { return a.ID })
	return listing.Apply(rows, q, membershipAppFields), nil
}

func (r *ApplicationRepo) ListSpecialist(_ context.Context, q listing.Query) (listing.Page[domain.SpecialistApplication], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.specialistApps,
		func(a domain.SpecialistApplication) time.Time { return a.CreatedAt },
		func(a domain.SpecialistApplication) string { return a.ID })
	return listing.Apply(rows, q, specialistAppFields), nil
}

func (r *ApplicationRepo) GetMembership(_ context.Context, id string) (*domain.MembershipApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.membershipApps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	return &a, nil
}

func (r *ApplicationRepo) GetSpecialist(_ context.Context, id string) (*domain.SpecialistApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.specialistApps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	return &a, nil
}

// ApproveMembership checks every constraint before mutating, so a failure
// leaves both tables untouched.
func (r *ApplicationRepo) ApproveMembership(_ context.Context, id string, rv application.Review) (*domain.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.membershipApps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	if a.Status != domain.ApplicationPending {
		return nil, application.ErrNotPending
	}
	for _, m := range r.s.members {
		if m.ApplicationID == id {
			return nil, fmt.Errorf("insert member: duplicate application_id %s", id)
		}
	}
	if _, dup := r.s.members[rv.DirectoryID]; dup || rv.DirectoryID == "" {
		return nil, fmt.Errorf("insert member: invalid id %q", rv.DirectoryID)
	}

	a.Status = domain.ApplicationApproved
	a.ReviewedBy = rv.Reviewer
	a.ReviewedAt = &rv.At
	a.UpdatedAt = rv.At
	m := domain.MemberFromApplication(rv.DirectoryID, a, rv.At)

	r.s.membershipApps[id] = a
	r.s.members[m.ID] = m
	r.s.changed(tblMembershipApps, opUpdate, id)
	r.s.changed(tblMembers, opInsert, m.ID)
	return &m, nil
}

func (r *ApplicationRepo) ApproveSpecialist(_ context.Context, id string, rv application.Review) (*domain.Specialist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.specialistApps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	if a.Status != domain.ApplicationPending {
		return nil, application.ErrNotPending
	}
	for _, sp := range r.s.specialists {
		if sp.ApplicationID == id {
			return nil, fmt.Errorf("insert specialist: duplicate application_id %s", id)
		}
	}
	if _, dup := r.s.specialists[rv.DirectoryID]; dup || rv.DirectoryID == "" {
		return nil, fmt.Errorf("insert specialist: invalid id %q", rv.DirectoryID)
	}

	a.Status = domain.ApplicationApproved
	a.ReviewedBy = rv.Reviewer
	a.ReviewedAt = &rv.At
	a.UpdatedAt = rv.At
	sp := domain.SpecialistFromApplication(rv.DirectoryID, a, rv.At)

	r.s.specialistApps[id] = a
	r.s.specialists[sp.ID] = sp
	r.s.changed(tblSpecialistApps, opUpdate, id)
	r.s.changed(tblSpecialists, opInsert, sp.ID)
	return &sp, nil
}

func (r *ApplicationRepo) Reject(_ context.Context, kind domain.ApplicationKind, id string, rv application.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	switch kind {
	case domain.KindMembership:
		a, ok := r.s.membershipApps[id]
		if !ok {
			return application.ErrNotFound
		}
		if a.Status != domain.ApplicationPending {
			return application.ErrNotPending
		}
		a.Status, a.RejectionReason, a.ReviewedBy, a.ReviewedAt, a.UpdatedAt =
			domain.ApplicationRejected, rv.Reason, rv.Reviewer, &rv.At, rv.At
		r.s.membershipApps[id] = a
		r.s.changed(tblMembershipApps, opUpdate, id)
	case domain.KindSpecialist:
		a, ok := r.s.specialistApps[id]
		if !ok {
			return application.ErrNotFound
		}
		if a.Status != domain.ApplicationPending {
			return application.ErrNotPending
		}
		a.Status, a.RejectionReason, a.ReviewedBy, a.ReviewedAt, a.UpdatedAt =
			domain.ApplicationRejected, rv.Reason, rv.Reviewer, &rv.At, rv.At
		r.s.specialistApps[id] = a
		r.s.changed(tblSpecialistApps, opUpdate, id)
	default:
		return application.ErrInvalidKind
	}
	return nil
}

func (r *ApplicationRepo) Delete(_ context.Context, kind domain.ApplicationKind, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	switch kind {
	case domain.KindMembership:
		if _, ok := r.s.membershipApps[id]; !ok {
			return application.ErrNotFound
		}
		delete(r.s.membershipApps, id)
		r.s.changed(tblMembershipApps, opDelete, id)
	case domain.KindSpecialist:
		if _, ok := r.s.specialistApps[id]; !ok {
			return application.ErrNotFound
		}
		delete(r.s.specialistApps, id)
		r.s.changed(tblSpecialistApps, opDelete, id)
	default:
		return application.ErrInvalidKind
	}
	return nil
}

func (r *ApplicationRepo) Counts(_ context.Context, kind domain.ApplicationKind) (domain.ApplicationCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var c domain.ApplicationCounts
	add := func(st domain.ApplicationStatus) {
		switch st {
		case domain.ApplicationPending:
			c.Pending++
		case domain.ApplicationApproved:
			c.Approved++
		case domain.ApplicationRejected:
			c.Rejected++
		}
	}
	switch kind {
	case domain.KindMembership:
		for _, a := range r.s.membershipApps {
			add(a.Status)
		}
	case domain.KindSpecialist:
		for _, a := range r.s.specialistApps {
			add(a.Status)
		}
	default:
		return c, application.ErrInvalidKind
	}
	return c, nil
}
