package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/member"
)

// MemberRepo implements member.Repository in memory.
type MemberRepo struct{ s *Store }

// directoryRow joins a member with its payments like the
// membership_directory view. Caller holds the lock.
func (r *MemberRepo) directoryRow(m domain.Member, now time.Time) domain.Member {
	m.Status = domain.MemberStatusAt(m.ExpiryDate, now)
	m.TotalPaidCents, m.PaymentCount, m.LastPaymentAt = 0, 0, nil
	for _, p := range r.s.payments {
		if p.MemberID != m.ID {
			continue
		}
		m.TotalPaidCents += p.AmountCents
		m.PaymentCount++
		if m.LastPaymentAt == nil || p.PaidAt.After(*m.LastPaymentAt) {
			at := p.PaidAt
			m.LastPaymentAt = &at
		}
	}
	return m
}

func (r *MemberRepo) List(_ context.Context, q listing.Query) (listing.Page[domain.Member], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := r.s.now()
	rows := newestFirst(r.s.members,
		func(m domain.Member) time.Time { return m.CreatedAt },
		func(m domain.Member) string { return m.ID })
	for i := range rows {
		rows[i] = r.directoryRow(rows[i], now)
	}
	return listing.Apply(rows, q, memberFields), nil
}

func (r *MemberRepo) Get(_ context.Context, id string) (*domain.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.members[id]
	if !ok {
		return nil, member.ErrNotFound
	}
	m = r.directoryRow(m, r.s.now())
	return &m, nil
}

func (r *MemberRepo) Payments(_ context.Context, memberID string) ([]domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Payment{}
	for _, p := range r.s.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Payment) int {
		if c := b.PaidAt.Compare(a.PaidAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *MemberRepo) RecordPayment(_ context.Context, p *domain.Payment) (time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[p.MemberID]
	if !ok {
		return time.Time{}, member.ErrNotFound
	}
	m.ExpiryDate = domain.RenewedExpiry(m.ExpiryDate, p.PaidAt)
	r.s.members[m.ID] = m
	r.s.payments = append(r.s.payments, *p)
	r.s.changed(tblPayments, opInsert, p.ID)
	r.s.changed(tblMembers, opUpdate, m.ID)
	return m.ExpiryDate, nil
}

func (r *MemberRepo) Stats(_ context.Context, yearStart time.Time) (domain.MemberStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	now := r.s.now()
	var st domain.MemberStats
	for _, m := range r.s.members {
		st.Total++
		switch domain.MemberStatusAt(m.ExpiryDate, now) {
		case domain.MemberActive:
			st.Active++
		case domain.MemberExpiring:
			st.Expiring++
		case domain.MemberExpired:
			st.Expired++
		}
	}
	for _, p := range r.s.payments {
		if !p.PaidAt.Before(yearStart) {
			st.RevenueCentsYTD += p.AmountCents
			st.PaymentsCountYTD++
		}
	}
	return st, nil
}
