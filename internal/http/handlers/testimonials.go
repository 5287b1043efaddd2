package handlers

import (
	"net/http"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/validation"
)

func (a *App) TestimonialsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Store.Testimonials.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) TestimonialsCreate(w http.ResponseWriter, r *http.Request) {
	var t domain.Testimonial
	if err := decode(w, r, &t, false); err != nil {
		a.fail(w, r, err)
		return
	}
	t.ID = 0
	if err := validation.Struct(t); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Store.Testimonials.Create(r.Context(), &t); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, t)
}
