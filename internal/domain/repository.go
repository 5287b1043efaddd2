package domain

import "context"

// CampaignRepository persists campaign metadata. It never changes Raised or
// Backers; those move only through a LedgerTx.
type CampaignRepository interface {
	List(ctx context.Context) ([]Campaign, error)
	GetByID(ctx context.Context, id int64) (*Campaign, error)
	ListByCategory(ctx context.Context, category string) ([]Campaign, error)
	Create(ctx context.Context, c *Campaign) error
	UpdateMetadata(ctx context.Context, id int64, patch CampaignPatch) (*Campaign, error)
}

// DonationRepository reads donation rows. Writes go through LedgerStore.
type DonationRepository interface {
	ListByCampaign(ctx context.Context, campaignID int64) ([]Donation, error)
}

// LedgerTx is the set of writes that must commit together when a donation
// is recorded.
type LedgerTx interface {
	DonorExists(ctx context.Context, userID int64) (bool, error)
	// IncrementFunding adds amount to raised and one to backers and returns
	// the new totals. It returns ErrNotFound if the campaign is missing.
	IncrementFunding(ctx context.Context, campaignID, amount int64) (FundingTotals, error)
	InsertDonation(ctx context.Context, d *Donation) error
}

// LedgerStore runs ledger transactions and exposes reconciliation queries.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(LedgerTx) error) error
	FundingDrift(ctx context.Context) ([]FundingDrift, error)
	RepairFunding(ctx context.Context, campaignID int64) (FundingTotals, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
}

// TestimonialRepository persists testimonials.
type TestimonialRepository interface {
	List(ctx context.Context) ([]Testimonial, error)
	Create(ctx context.Context, t *Testimonial) error
}

// LocationRepository persists venue locations.
type LocationRepository interface {
	List(ctx context.Context) ([]Location, error)
	ListByCampaign(ctx context.Context, campaignID int64) ([]Location, error)
	Create(ctx context.Context, l *Location) error
}

// Store bundles every repository of one backend.
type Store struct {
	Campaigns    CampaignRepository
	Donations    DonationRepository
	Ledger       LedgerStore
	Users        UserRepository
	Testimonials TestimonialRepository
	Locations    LocationRepository
}
