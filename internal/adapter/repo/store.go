package repo

import (
	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
)

// NewStore wires every Postgres repository onto one runner.
func NewStore(db infra.TxExecutor) domain.Store {
	return domain.Store{
		Campaigns:    NewCampaignRepository(db),
		Donations:    NewDonationRepository(db),
		Ledger:       NewLedgerStore(db),
		Users:        NewUserRepository(db),
		Testimonials: NewTestimonialRepository(db),
		Locations:    NewLocationRepository(db),
	}
}
