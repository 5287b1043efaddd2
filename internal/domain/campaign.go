package domain

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCampaignDays is the campaign duration used when none is supplied.
const DefaultCampaignDays = 30

// CanonicalCategory trims and title-cases a category so "coffee shop" and
// "Coffee Shop" are stored alike. Existing capitals such as "LGBTQ+" are kept.
func CanonicalCategory(category string) string {
	fields := strings.Fields(category)
	return cases.Title(language.English, cases.NoLower).String(strings.Join(fields, " "))
}

// Campaign is a fundraising project. Raised and Backers are denormalized
// aggregates of the campaign's donations and only the funding ledger moves them.
type Campaign struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Goal        int64      `json:"goal"`
	Raised      int64      `json:"raised"`
	Backers     int64      `json:"backers"`
	DaysLeft    int        `json:"daysLeft"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	UserID      int64      `json:"userId"`
	Location    string     `json:"location,omitempty"`
	OwnerName   string     `json:"ownerName,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// RefreshDaysLeft recomputes DaysLeft from Deadline relative to now.
func (c *Campaign) RefreshDaysLeft(now time.Time) {
	if c.Deadline == nil {
		return
	}
	remaining := c.Deadline.Sub(now)
	if remaining <= 0 {
		c.DaysLeft = 0
		return
	}
	c.DaysLeft = int(math.Ceil(remaining.Hours() / 24))
}

// Totals returns the campaign's current funding aggregates.
func (c Campaign) Totals() FundingTotals {
	return FundingTotals{CampaignID: c.ID, Raised: c.Raised, Backers: c.Backers}
}

// NewCampaign is the creation input. It has no aggregate fields: a new
// campaign always starts at zero raised and zero backers.
type NewCampaign struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Category    string     `json:"category" validate:"required,max=80"`
	Goal        int64      `json:"goal" validate:"gt=0"`
	DaysLeft    int        `json:"daysLeft" validate:"omitempty,min=1,max=365"`
	ImageURL    string     `json:"imageUrl" validate:"omitempty,url"`
	UserID      int64      `json:"userId" validate:"gt=0"`
	Location    string     `json:"location" validate:"omitempty,max=200"`
	OwnerName   string     `json:"ownerName" validate:"omitempty,max=120"`
	Deadline    *time.Time `json:"deadline"`
}

// Materialize turns the input into a campaign created at now.
func (n NewCampaign) Materialize(now time.Time) Campaign {
	days := n.DaysLeft
	if days <= 0 {
		days = DefaultCampaignDays
	}
	deadline := n.Deadline
	if deadline == nil {
		d := now.AddDate(0, 0, days)
		deadline = &d
	}
	c := Campaign{
		Title:       n.Title,
		Description: n.Description,
		Category:    CanonicalCategory(n.Category),
		Goal:        n.Goal,
		DaysLeft:    days,
		ImageURL:    n.ImageURL,
		UserID:      n.UserID,
		Location:    n.Location,
		OwnerName:   n.OwnerName,
		Deadline:    deadline,
		CreatedAt:   now,
	}
	c.RefreshDaysLeft(now)
	return c
}

// CampaignPatch edits campaign metadata. Raised and Backers are not editable.
type CampaignPatch struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,min=1"`
	Category    *string    `json:"category" validate:"omitempty,min=1,max=80"`
	Goal        *int64     `json:"goal" validate:"omitempty,gt=0"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	OwnerName   *string    `json:"ownerName" validate:"omitempty,max=120"`
	Deadline    *time.Time `json:"deadline"`
}

// Empty reports whether the patch changes nothing.
func (p CampaignPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Goal == nil &&
		p.ImageURL == nil && p.Location == nil && p.OwnerName == nil && p.Deadline == nil
}

// Apply copies the set fields onto c.
func (p CampaignPatch) Apply(c *Campaign) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = CanonicalCategory(*p.Category)
	}
	if p.Goal != nil {
		c.Goal = *p.Goal
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.OwnerName != nil {
		c.OwnerName = *p.OwnerName
	}
	if p.Deadline != nil {
		d := *p.Deadline
		c.Deadline = &d
	}
}
