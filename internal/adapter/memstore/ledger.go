package memstore

import (
	"context"
	"math"

	"rainbowrise/internal/domain"
)

type ledgerStore struct{ s *Store }

// WithinTx holds the store lock while fn runs. Increments and inserts are
// staged on the transaction and applied only if fn and the commit succeed.
func (l ledgerStore) WithinTx(_ context.Context, fn func(domain.LedgerTx) error) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	tx := &memTx{s: l.s, deltas: make(map[int64]domain.FundingTotals)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := l.s.takeFault("commit"); err != nil {
		return err
	}
	for id, d := range tx.deltas {
		c := l.s.campaigns[id]
		c.Raised += d.Raised
		c.Backers += d.Backers
	}
	for _, d := range tx.pending {
		l.s.lastDonationID++
		d.ID = l.s.lastDonationID
		l.s.donations = append(l.s.donations, *d)
	}
	return nil
}

func (l ledgerStore) FundingDrift(_ context.Context) ([]domain.FundingDrift, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	actual := l.s.actualTotals()
	drifts := make([]domain.FundingDrift, 0)
	for _, c := range l.s.sortedCampaignIDs() {
		stored := l.s.campaigns[c].Totals()
		a := actual[c]
		a.CampaignID = c
		if stored.Raised != a.Raised || stored.Backers != a.Backers {
			drifts = append(drifts, domain.FundingDrift{CampaignID: c, Stored: stored, Actual: a})
		}
	}
	return drifts, nil
}

func (l ledgerStore) RepairFunding(_ context.Context, campaignID int64) (domain.FundingTotals, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	c, ok := l.s.campaigns[campaignID]
	if !ok {
		return domain.FundingTotals{}, domain.NotFound("campaign", nil)
	}
	a := l.s.actualTotals()[campaignID]
	c.Raised, c.Backers = a.Raised, a.Backers
	return c.Totals(), nil
}

func (s *Store) actualTotals() map[int64]domain.FundingTotals {
	out := make(map[int64]domain.FundingTotals, len(s.campaigns))
	for _, d := range s.donations {
		t := out[d.CampaignID]
		t.CampaignID = d.CampaignID
		t.Raised += d.Amount
		t.Backers++
		out[d.CampaignID] = t
	}
	return out
}

func (s *Store) sortedCampaignIDs() []int64 {
	ids := make([]int64, 0, len(s.campaigns))
	for id := int64(1); id <= s.lastCampaignID; id++ {
		if _, ok := s.campaigns[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

type memTx struct {
	s       *Store
	deltas  map[int64]domain.FundingTotals
	pending []*domain.Donation
}

func (t *memTx) DonorExists(_ context.Context, userID int64) (bool, error) {
	_, ok := t.s.users[userID]
	return ok, nil
}

func (t *memTx) IncrementFunding(_ context.Context, campaignID, amount int64) (domain.FundingTotals, error) {
	if err := t.s.takeFault("increment"); err != nil {
		return domain.FundingTotals{}, err
	}
	c, ok := t.s.campaigns[campaignID]
	if !ok {
		return domain.FundingTotals{}, domain.NotFound("campaign", nil)
	}
	d := t.deltas[campaignID]
	if amount > math.MaxInt64-(c.Raised+d.Raised) {
		return domain.FundingTotals{}, domain.NewValidationError("amount", "amount would overflow the campaign total")
	}
	d.Raised += amount
	d.Backers++
	t.deltas[campaignID] = d
	return domain.FundingTotals{
		CampaignID: campaignID,
		Raised:     c.Raised + d.Raised,
		Backers:    c.Backers + d.Backers,
	}, nil
}

func (t *memTx) InsertDonation(_ context.Context, d *domain.Donation) error {
	if err := t.s.takeFault("insert_donation"); err != nil {
		return err
	}
	if _, ok := t.s.campaigns[d.CampaignID]; !ok {
		return domain.NotFound("campaign", nil)
	}
	if _, ok := t.s.users[d.UserID]; !ok {
		return domain.NotFound("user", nil)
	}
	d.CreatedAt = t.s.now()
	t.pending = append(t.pending, d)
	return nil
}
