// Package memstore keeps every repository in process memory. It backs the
// API when no DATABASE_URL is configured and the ledger tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rainbowrise/internal/domain"
)

// Store is a mutex-guarded in-memory implementation of every repository.
// Ledger transactions hold the lock for their whole duration and buffer
// their writes until commit.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	campaigns    map[int64]*domain.Campaign
	donations    []domain.Donation
	users        map[int64]*domain.User
	testimonials []domain.Testimonial
	locations    []domain.Location

	lastCampaignID    int64
	lastDonationID    int64
	lastUserID        int64
	lastTestimonialID int64
	lastLocationID    int64

	faults map[string]error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		campaigns: make(map[int64]*domain.Campaign),
		users:     make(map[int64]*domain.User),
		faults:    make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the store through the domain interfaces.
func (s *Store) Repositories() domain.Store {
	return domain.Store{
		Campaigns:    campaignRepo{s},
		Donations:    donationRepo{s},
		Ledger:       ledgerStore{s},
		Users:        userRepo{s},
		Testimonials: testimonialRepo{s},
		Locations:    locationRepo{s},
	}
}

// FailNext makes the next call of op return err. Ops are "increment",
// "insert_donation" and "commit".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// SetFunding overwrites a campaign's stored totals, bypassing the ledger.
// It exists to simulate drift.
func (s *Store) SetFunding(campaignID, raised, backers int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.campaigns[campaignID]; ok {
		c.Raised, c.Backers = raised, backers
	}
}

func (s *Store) takeFault(op string) error {
	err := s.faults[op]
	delete(s.faults, op)
	return err
}

type campaignRepo struct{ s *Store }

func (r campaignRepo) List(_ context.Context) ([]domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedCampaigns(func(domain.Campaign) bool { return true }), nil
}

func (r campaignRepo) GetByID(_ context.Context, id int64) (*domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, domain.NotFound("campaign", nil)
	}
	out := cloneCampaign(*c)
	return &out, nil
}

func (r campaignRepo) ListByCategory(_ context.Context, category string) ([]domain.Campaign, error) {
	want := domain.CanonicalCategory(category)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sortedCampaigns(func(c domain.Campaign) bool {
		return strings.EqualFold(c.Category, want)
	}), nil
}

func (r campaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[c.UserID]; !ok {
		return domain.NotFound("user", nil)
	}
	r.s.lastCampaignID++
	c.ID = r.s.lastCampaignID
	c.Raised, c.Backers = 0, 0
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	stored := cloneCampaign(*c)
	r.s.campaigns[c.ID] = &stored
	return nil
}

func (r campaignRepo) UpdateMetadata(_ context.Context, id int64, patch domain.CampaignPatch) (*domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, domain.NotFound("campaign", nil)
	}
	patch.Apply(c)
	out := cloneCampaign(*c)
	return &out, nil
}

func (s *Store) sortedCampaigns(keep func(domain.Campaign) bool) []domain.Campaign {
	out := make([]domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if keep(*c) {
			out = append(out, cloneCampaign(*c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	if c.Deadline != nil {
		d := *c.Deadline
		c.Deadline = &d
	}
	return c
}

type donationRepo struct{ s *Store }

func (r donationRepo) ListByCampaign(_ context.Context, campaignID int64) ([]domain.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Donation, 0)
	for i := len(r.s.donations) - 1; i >= 0; i-- {
		if r.s.donations[i].CampaignID == campaignID {
			out = append(out, r.s.donations[i])
		}
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user", nil)
	}
	out := *u
	return &out, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.NotFound("user", nil)
}

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return &domain.DuplicateError{Field: "username"}
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return &domain.DuplicateError{Field: "email"}
		}
	}
	r.s.lastUserID++
	u.ID = r.s.lastUserID
	stored := *u
	r.s.users[u.ID] = &stored
	return nil
}

type testimonialRepo struct{ s *Store }

func (r testimonialRepo) List(_ context.Context) ([]domain.Testimonial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append(make([]domain.Testimonial, 0, len(r.s.testimonials)), r.s.testimonials...), nil
}

func (r testimonialRepo) Create(_ context.Context, t *domain.Testimonial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lastTestimonialID++
	t.ID = r.s.lastTestimonialID
	r.s.testimonials = append(r.s.testimonials, *t)
	return nil
}

type locationRepo struct{ s *Store }

func (r locationRepo) List(_ context.Context) ([]domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append(make([]domain.Location, 0, len(r.s.locations)), r.s.locations...), nil
}

func (r locationRepo) ListByCampaign(_ context.Context, campaignID int64) ([]domain.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Location, 0)
	for _, l := range r.s.locations {
		if l.CampaignID != nil && *l.CampaignID == campaignID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r locationRepo) Create(_ context.Context, l *domain.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.CampaignID != nil {
		if _, ok := r.s.campaigns[*l.CampaignID]; !ok {
			return domain.NotFound("campaign", nil)
		}
	}
	r.s.lastLocationID++
	l.ID = r.s.lastLocationID
	r.s.locations = append(r.s.locations, *l)
	return nil
}
