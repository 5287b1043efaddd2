package handlers

import (
	"net/http"
	"strings"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/validation"
)

func (a *App) UsersCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.NewUser
	if err := decode(w, r, &in, false); err != nil {
		a.fail(w, r, err)
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		a.fail(w, r, err)
		return
	}
	hash, err := domain.HashPassword(in.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	u := domain.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := a.Store.Users.Create(r.Context(), &u); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, u)
}
