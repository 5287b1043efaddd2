package domain

import "time"

// Donation is an immutable record of one contribution to a campaign.
type Donation struct {
	ID         int64     `json:"id"`
	Amount     int64     `json:"amount"`
	CampaignID int64     `json:"campaignId"`
	UserID     int64     `json:"userId"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MaxDonationAmount caps a single donation. It matches the lte bound on
// NewDonation.Amount.
const MaxDonationAmount int64 = 100_000_000

// NewDonation is the input of the funding ledger.
type NewDonation struct {
	Amount     int64 `json:"amount" validate:"gt=0,lte=100000000"`
	CampaignID int64 `json:"campaignId" validate:"gt=0"`
	UserID     int64 `json:"userId" validate:"gt=0"`
	Anonymous  bool  `json:"anonymous"`
}

// FundingTotals are the aggregate counters kept on a campaign row.
type FundingTotals struct {
	CampaignID int64 `json:"campaignId"`
	Raised     int64 `json:"raised"`
	Backers    int64 `json:"backers"`
}

// FundingDrift describes a campaign whose stored totals disagree with the
// sum and count of its donation rows.
type FundingDrift struct {
	CampaignID int64         `json:"campaignId"`
	Stored     FundingTotals `json:"stored"`
	Actual     FundingTotals `json:"actual"`
}
