package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rainbowrise/internal/domain"
)

// flexibleID accepts a JSON number or a numeric string.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.NewValidationError("userId", "userId must be a number")
		}
		*f = flexibleID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return domain.NewValidationError("userId", "userId must be a number")
	}
	*f = flexibleID(n)
	return nil
}

type donationRequest struct {
	Amount     int64      `json:"amount"`
	CampaignID int64      `json:"campaignId"`
	UserID     flexibleID `json:"userId"`
	Anonymous  bool       `json:"anonymous"`
}

// donationView hides the donor of anonymous donations.
type donationView struct {
	ID         int64     `json:"id"`
	Amount     int64     `json:"amount"`
	CampaignID int64     `json:"campaignId"`
	UserID     *int64    `json:"userId"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"createdAt"`
}

func publicDonation(d domain.Donation) donationView {
	v := donationView{
		ID:         d.ID,
		Amount:     d.Amount,
		CampaignID: d.CampaignID,
		Anonymous:  d.Anonymous,
		CreatedAt:  d.CreatedAt,
	}
	if !d.Anonymous {
		uid := d.UserID
		v.UserID = &uid
	}
	return v
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := decode(w, r, &req, false); err != nil {
		a.fail(w, r, err)
		return
	}
	receipt, err := a.Ledger.RecordDonation(r.Context(), domain.NewDonation{
		Amount:     req.Amount,
		CampaignID: req.CampaignID,
		UserID:     int64(req.UserID),
		Anonymous:  req.Anonymous,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("X-Campaign-Raised", strconv.FormatInt(receipt.Totals.Raised, 10))
	w.Header().Set("X-Campaign-Backers", strconv.FormatInt(receipt.Totals.Backers, 10))
	a.json(w, http.StatusCreated, receipt.Donation)
}

func (a *App) DonationsByCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "campaignId"), "campaignId")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	donations, err := a.Store.Donations.ListByCampaign(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]donationView, 0, len(donations))
	for _, d := range donations {
		items = append(items, publicDonation(d))
	}
	a.json(w, http.StatusOK, items)
}
