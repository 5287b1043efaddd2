package memstore

import (
	"context"
	"fmt"
	"time"

	"rainbowrise/internal/domain"
)

// RecordFunc records one donation through the funding ledger.
type RecordFunc func(ctx context.Context, in domain.NewDonation) error

type seedCampaign struct {
	campaign domain.NewCampaign
	raised   int64
	backers  int64
	lat, lng float64
	pinType  string
}

var demoTestimonials = []domain.Testimonial{
	{
		Name:     "Jamie Rodriguez",
		Role:     "Founder, Spectrum Lounge",
		Content:  "Rainbow Rise gave us the platform we needed to connect with the community and raise funds for our bar. The support has been overwhelming and we can't wait to open our doors!",
		ImageURL: "https://images.unsplash.com/photo-1580489944761-15a19d654956?auto=format&fit=crop&w=150&q=80",
	},
	{
		Name:     "Alex Kim",
		Role:     "Backer & Community Member",
		Content:  "I've backed three campaigns on Rainbow Rise because I believe in preserving queer spaces in Austin. It feels amazing to be part of something so important to our community.",
		ImageURL: "https://images.unsplash.com/photo-1542206395-9feb3edaa68d?auto=format&fit=crop&w=150&q=80",
	},
}

var demoCampaigns = []seedCampaign{
	{
		campaign: domain.NewCampaign{
			Title:       "Spectrum Lounge",
			Description: "A new inclusive cocktail bar with a focus on craft drinks and community events in East Austin.",
			Category:    "Bar & Lounge",
			Goal:        75000,
			DaysLeft:    14,
			ImageURL:    "https://images.unsplash.com/photo-1543007631-283050bb3e8c?auto=format&fit=crop&w=600&q=80",
			Location:    "East Austin",
		},
		raised: 47500, backers: 214,
		lat: 30.2627, lng: -97.7195, pinType: "bar",
	},
	{
		campaign: domain.NewCampaign{
			Title:       "Rainbow Hub",
			Description: "A multi-purpose community center offering resources, meeting spaces, and support for LGBTQ+ individuals.",
			Category:    "Community Center",
			Goal:        120000,
			DaysLeft:    21,
			ImageURL:    "https://images.unsplash.com/photo-1578474846511-04ba529f0b88?auto=format&fit=crop&w=600&q=80",
			Location:    "Central Austin",
		},
		raised: 89250, backers: 432,
		lat: 30.2672, lng: -97.7431, pinType: "community",
	},
	{
		campaign: domain.NewCampaign{
			Title:       "Neon Nights",
			Description: "A vibrant dance club with multiple floors offering diverse music styles and inclusive theme nights.",
			Category:    "Dance Club",
			Goal:        150000,
			DaysLeft:    45,
			ImageURL:    "https://images.unsplash.com/photo-1514933651103-005eec06c04b?auto=format&fit=crop&w=600&q=80",
			Location:    "South Austin",
		},
		raised: 32800, backers: 165,
		lat: 30.2450, lng: -97.7667, pinType: "club",
	},
}

// SeedDemo loads the demo user, testimonials, campaigns and their pins.
// Campaign totals are produced by recording donations through record so
// raised and backers always match the donation rows.
func SeedDemo(ctx context.Context, store domain.Store, record RecordFunc, now time.Time) error {
	hash, err := domain.HashPassword("password")
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}
	demo := &domain.User{Username: "demo", Email: "demo@example.com", Name: "Demo User", PasswordHash: hash}
	if err := store.Users.Create(ctx, demo); err != nil {
		return fmt.Errorf("seed: user: %w", err)
	}

	for i := range demoTestimonials {
		t := demoTestimonials[i]
		if err := store.Testimonials.Create(ctx, &t); err != nil {
			return fmt.Errorf("seed: testimonial: %w", err)
		}
	}

	for _, sc := range demoCampaigns {
		in := sc.campaign
		in.UserID = demo.ID
		in.OwnerName = demo.Name
		c := in.Materialize(now)
		if err := store.Campaigns.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed: campaign %q: %w", c.Title, err)
		}

		campaignID := c.ID
		pin := &domain.Location{Name: c.Title, Latitude: sc.lat, Longitude: sc.lng, Type: sc.pinType, CampaignID: &campaignID}
		if err := store.Locations.Create(ctx, pin); err != nil {
			return fmt.Errorf("seed: location %q: %w", c.Title, err)
		}

		for _, amount := range splitAmount(sc.raised, sc.backers) {
			err := record(ctx, domain.NewDonation{Amount: amount, CampaignID: c.ID, UserID: demo.ID, Anonymous: true})
			if err != nil {
				return fmt.Errorf("seed: donation for %q: %w", c.Title, err)
			}
		}
	}
	return nil
}

// splitAmount divides total into n positive parts that sum to total.
func splitAmount(total, n int64) []int64 {
	if n <= 0 || total < n {
		return nil
	}
	parts := make([]int64, n)
	base, rem := total/n, total%n
	for i := range parts {
		parts[i] = base
		if int64(i) < rem {
			parts[i]++
		}
	}
	return parts
}
