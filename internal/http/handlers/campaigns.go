package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/validation"
)

func (a *App) refresh(campaigns []domain.Campaign) []domain.Campaign {
	now := a.now()
	for i := range campaigns {
		campaigns[i].RefreshDaysLeft(now)
	}
	return campaigns
}

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	campaigns, err := a.Store.Campaigns.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.refresh(campaigns))
}

func (a *App) CampaignGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Store.Campaigns.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c.RefreshDaysLeft(a.now())
	a.json(w, http.StatusOK, c)
}

func (a *App) CampaignsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	campaigns, err := a.Store.Campaigns.ListByCategory(r.Context(), category)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.refresh(campaigns))
}

func (a *App) CampaignCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.NewCampaign
	if err := decode(w, r, &in, false); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		a.fail(w, r, err)
		return
	}
	c := in.Materialize(a.now())
	if err := a.Store.Campaigns.Create(r.Context(), &c); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, c)
}

func (a *App) CampaignUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.CampaignPatch
	if err := decode(w, r, &patch, true); err != nil {
		a.fail(w, r, err)
		return
	}
	if patch.Empty() {
		a.fail(w, r, domain.NewValidationError("body", "no fields to update"))
		return
	}
	if err := validation.Struct(patch); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Store.Campaigns.UpdateMetadata(r.Context(), id, patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c.RefreshDaysLeft(a.now())
	a.json(w, http.StatusOK, c)
}

func (a *App) CampaignLocations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if _, err := a.Store.Campaigns.GetByID(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	locations, err := a.Store.Locations.ListByCampaign(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, locations)
}
