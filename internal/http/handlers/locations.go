package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/middleware"
	"rainbowrise/internal/validation"
)

const maxNearbyLimit = 100

type nearbyLocation struct {
	domain.Location
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

type nearbyResponse struct {
	Origin    *domain.Coordinates `json:"origin"`
	Locations []nearbyLocation    `json:"locations"`
}

func (a *App) LocationsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Store.Locations.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, items)
}

func (a *App) LocationsCreate(w http.ResponseWriter, r *http.Request) {
	var l domain.Location
	if err := decode(w, r, &l, false); err != nil {
		a.fail(w, r, err)
		return
	}
	l.ID = 0
	if err := validation.Struct(l); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Store.Locations.Create(r.Context(), &l); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, l)
}

// LocationsNearby orders venues by distance from ?lat=&lng= or, failing
// that, from the caller's GeoIP position.
func (a *App) LocationsNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.fail(w, r, domain.NewValidationError("limit", "limit must be a positive integer"))
			return
		}
		limit = min(n, maxNearbyLimit)
	}
	origin, err := a.nearbyOrigin(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	locations, err := a.Store.Locations.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]nearbyLocation, 0, len(locations))
	for _, l := range locations {
		item := nearbyLocation{Location: l}
		if origin != nil {
			d := domain.DistanceKm(*origin, l.Point())
			item.DistanceKm = &d
		}
		out = append(out, item)
	}
	if origin != nil {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	a.json(w, http.StatusOK, nearbyResponse{Origin: origin, Locations: out})
}

func (a *App) nearbyOrigin(r *http.Request) (*domain.Coordinates, error) {
	q := r.URL.Query()
	rawLat, rawLng := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lng"))
	if rawLat != "" || rawLng != "" {
		lat, err := strconv.ParseFloat(rawLat, 64)
		if err != nil {
			return nil, domain.NewValidationError("lat", "lat must be a number")
		}
		lng, err := strconv.ParseFloat(rawLng, 64)
		if err != nil {
			return nil, domain.NewValidationError("lng", "lng must be a number")
		}
		point := struct {
			Lat float64 `json:"lat" validate:"latitude"`
			Lng float64 `json:"lng" validate:"longitude"`
		}{lat, lng}
		if err := validation.Struct(point); err != nil {
			return nil, err
		}
		return &domain.Coordinates{Latitude: lat, Longitude: lng}, nil
	}
	if a.Geo == nil {
		return nil, nil
	}
	c, err := a.Geo.Locate(middleware.ClientIP(r, a.TrustProxy))
	if err != nil {
		a.Logger.Debug().Err(err).Msg("geoip lookup failed")
		return nil, nil
	}
	return &c, nil
}
