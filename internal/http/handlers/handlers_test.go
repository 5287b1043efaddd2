package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rainbowrise/internal/adapter/memstore"
	"rainbowrise/internal/assistant"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/imagegen"
	"rainbowrise/internal/ledger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubAssistant struct {
	lastQuery string
}

func (s *stubAssistant) Ask(_ context.Context, q string) assistant.Reply {
	s.lastQuery = q
	return assistant.Reply{Text: "Visit Spectrum Lounge"}
}

type stubImages struct {
	url string
	err error
}

func (s stubImages) Generate(context.Context, string) (string, error) {
	return s.url, s.err
}

type stubGeo struct {
	at  domain.Coordinates
	err error
}

func (s stubGeo) Locate(string) (domain.Coordinates, error) { return s.at, s.err }

type testEnv struct {
	app    *App
	mem    *memstore.Store
	router chi.Router
	userID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := memstore.New(memstore.WithClock(func() time.Time { return testNow }))
	store := mem.Repositories()
	u := domain.User{Username: "demo", Email: "demo@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(context.Background(), &u))

	app := &App{
		Store:     store,
		Ledger:    ledger.NewService(store.Ledger, zerolog.Nop()),
		Assistant: &stubAssistant{},
		Images:    stubImages{url: "https://img.test/a.png"},
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return testNow },
	}
	r := chi.NewRouter()
	r.Get("/campaigns", app.CampaignsList)
	r.Post("/campaigns", app.CampaignCreate)
	r.Get("/campaigns/category/{category}", app.CampaignsByCategory)
	r.Get("/campaigns/{id}", app.CampaignGet)
	r.Patch("/campaigns/{id}", app.CampaignUpdate)
	r.Get("/campaigns/{id}/locations", app.CampaignLocations)
	r.Post("/donations", app.DonationsCreate)
	r.Get("/donations/{campaignId}", app.DonationsByCampaign)
	r.Post("/users", app.UsersCreate)
	r.Get("/testimonials", app.TestimonialsList)
	r.Post("/testimonials", app.TestimonialsCreate)
	r.Get("/locations", app.LocationsList)
	r.Post("/locations", app.LocationsCreate)
	r.Get("/locations/nearby", app.LocationsNearby)
	r.Post("/assistant", app.AssistantQuery)
	r.Post("/generate-image", app.ImagesGenerate)
	r.Get("/healthz", app.Health)
	return &testEnv{app: app, mem: mem, router: r, userID: u.ID}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func (e *testEnv) createCampaign(t *testing.T) domain.Campaign {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/campaigns",
		`{"title":"Spectrum Lounge","description":"A cozy bar","category":"  night   life ","goal":10000,"userId":1,"raised":999,"backers":7}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[domain.Campaign](t, rr)
}

func TestCampaignCreateForcesZeroTotals(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t)

	require.NotZero(t, c.ID)
	require.Zero(t, c.Raised)
	require.Zero(t, c.Backers)
	require.Equal(t, "Night Life", c.Category)
	require.Equal(t, domain.DefaultCampaignDays, c.DaysLeft)
	require.NotNil(t, c.Deadline)
	require.True(t, c.Deadline.Equal(testNow.AddDate(0, 0, 30)))
}

func TestCampaignCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/campaigns", `{"title":"","description":"d","category":"Bar","goal":0,"userId":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody[errorBody](t, rr)
	require.Equal(t, "validation_error", body.Code)
	require.Contains(t, body.Fields, "goal")
	require.Contains(t, body.Fields, "title")

	rr = env.do(t, http.MethodPost, "/campaigns", `{"title":"t","description":"d","category":"Bar","goal":5,"userId":99}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "user not found", decodeBody[errorBody](t, rr).Message)
}

func TestCampaignGet(t *testing.T) {
	env := newTestEnv(t)
	c := env.createCampaign(t)

	rr := env.do(t, http.MethodGet, "/campaigns/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/campaigns/999", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "campaign not found", decodeBody[errorBody](t, rr).Message)

	env.app.Now = func() time.Time { return testNow.Add(29*24*time.Hour + time.Hour) }
	rr = env.do(t, http.MethodGet, "/campaigns/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[domain.Campaign](t, rr)
	require.Equal(t, c.ID, got.ID)
	require.Equal(t, 1, got.DaysLeft)
}

func TestCampaignsByCategoryIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t)

	rr := env.do(t, http.MethodGet, "/campaigns/category/night%20life", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decodeBody[[]domain.Campaign](t, rr), 1)

	rr = env.do(t, http.MethodGet, "/campaigns/category/Coffee", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, decodeBody[[]domain.Campaign](t, rr))
}

func TestCampaignUpdate(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t)

	rr := env.do(t, http.MethodPatch, "/campaigns/1", `{"raised":500}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPatch, "/campaigns/1", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPatch, "/campaigns/1", `{"title":"Spectrum Lounge & Stage","goal":20000}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeBody[domain.Campaign](t, rr)
	require.Equal(t, "Spectrum Lounge & Stage", got.Title)
	require.Equal(t, int64(20000), got.Goal)
	require.Zero(t, got.Raised)

	rr = env.do(t, http.MethodPatch, "/campaigns/42", `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDonationFlow(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t)

	rr := env.do(t, http.MethodPost, "/donations", `{"amount":25,"campaignId":1,"userId":"1","anonymous":false}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "25", rr.Header().Get("X-Campaign-Raised"))
	require.Equal(t, "1", rr.Header().Get("X-Campaign-Backers"))
	first := decodeBody[domain.Donation](t, rr)
	require.Equal(t, int64(1), first.UserID)

	rr = env.do(t, http.MethodPost, "/donations", `{"amount":100,"campaignId":1,"userId":1,"anonymous":true}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "125", rr.Header().Get("X-Campaign-Raised"))
	require.Equal(t, "2", rr.Header().Get("X-Campaign-Backers"))

	rr = env.do(t, http.MethodGet, "/campaigns/1", "")
	c := decodeBody[domain.Campaign](t, rr)
	require.Equal(t, int64(125), c.Raised)
	require.Equal(t, int64(2), c.Backers)

	rr = env.do(t, http.MethodGet, "/donations/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 2)
	require.Equal(t, float64(100), list[0]["amount"])
	require.Nil(t, list[0]["userId"])
	require.Equal(t, float64(1), list[1]["userId"])
}

func TestDonationRejections(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t)

	cases := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"zero amount", `{"amount":0,"campaignId":1,"userId":1}`, http.StatusBadRequest, ""},
		{"amount over cap", `{"amount":9223372036854775807,"campaignId":1,"userId":1}`, http.StatusBadRequest, ""},
		{"fractional amount", `{"amount":2.5,"campaignId":1,"userId":1}`, http.StatusBadRequest, ""},
		{"bad user id", `{"amount":5,"campaignId":1,"userId":"abc"}`, http.StatusBadRequest, ""},
		{"missing campaign", `{"amount":5,"campaignId":77,"userId":1}`, http.StatusNotFound, "campaign not found"},
		{"missing donor", `{"amount":5,"campaignId":1,"userId":77}`, http.StatusNotFound, "user not found"},
		{"malformed", `{"amount":`, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/donations", tc.body)
			require.Equal(t, tc.code, rr.Code, rr.Body.String())
			if tc.msg != "" {
				require.Equal(t, tc.msg, decodeBody[errorBody](t, rr).Message)
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/campaigns/1", "")
	c := decodeBody[domain.Campaign](t, rr)
	require.Zero(t, c.Raised)
	require.Zero(t, c.Backers)

	rr = env.do(t, http.MethodGet, "/donations/77", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]\n", rr.Body.String())
}

func TestUsersCreate(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/users", `{"username":"river","password":"supersecret","email":"river@example.com","name":"River"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "password")
	require.NotContains(t, rr.Body.String(), "supersecret")

	u, err := env.app.Store.Users.GetByUsername(context.Background(), "river")
	require.NoError(t, err)
	require.True(t, u.CheckPassword("supersecret"))

	rr = env.do(t, http.MethodPost, "/users", `{"username":"river","password":"supersecret","email":"other@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Username already exists", decodeBody[errorBody](t, rr).Message)

	rr = env.do(t, http.MethodPost, "/users", `{"username":"ri","password":"short","email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	fields := decodeBody[errorBody](t, rr).Fields
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "password")
	require.Contains(t, fields, "email")
}

func TestTestimonials(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/testimonials", `{"name":"Alex","role":"Drag performer","content":"Home."}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/testimonials", `{"name":"Alex"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/testimonials", "")
	require.Len(t, decodeBody[[]domain.Testimonial](t, rr), 1)
}

func TestLocationsAndNearby(t *testing.T) {
	env := newTestEnv(t)
	env.createCampaign(t)

	rr := env.do(t, http.MethodPost, "/locations", `{"name":"Far","latitude":32.7767,"longitude":-96.797,"type":"bar"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = env.do(t, http.MethodPost, "/locations", `{"name":"Near","latitude":30.2672,"longitude":-97.7431,"type":"cafe","campaignId":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = env.do(t, http.MethodPost, "/locations", `{"name":"Bad","latitude":120,"longitude":0,"type":"bar"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodPost, "/locations", `{"name":"Orphan","latitude":1,"longitude":1,"type":"bar","campaignId":9}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/campaigns/1/locations", "")
	require.Len(t, decodeBody[[]domain.Location](t, rr), 1)

	rr = env.do(t, http.MethodGet, "/locations/nearby?lat=30.27&lng=-97.74", "")
	require.Equal(t, http.StatusOK, rr.Code)
	near := decodeBody[nearbyResponse](t, rr)
	require.NotNil(t, near.Origin)
	require.Len(t, near.Locations, 2)
	require.Equal(t, "Near", near.Locations[0].Name)
	require.Less(t, *near.Locations[0].DistanceKm, 1.0)

	rr = env.do(t, http.MethodGet, "/locations/nearby?lat=95&lng=0", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/locations/nearby", "")
	near = decodeBody[nearbyResponse](t, rr)
	require.Nil(t, near.Origin)
	require.Len(t, near.Locations, 2)

	env.app.Geo = stubGeo{at: domain.Coordinates{Latitude: 32.78, Longitude: -96.8}}
	rr = env.do(t, http.MethodGet, "/locations/nearby?limit=1", "")
	near = decodeBody[nearbyResponse](t, rr)
	require.NotNil(t, near.Origin)
	require.Len(t, near.Locations, 1)
	require.Equal(t, "Far", near.Locations[0].Name)

	env.app.Geo = stubGeo{err: errors.New("no db")}
	rr = env.do(t, http.MethodGet, "/locations/nearby", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, decodeBody[nearbyResponse](t, rr).Origin)
}

func TestAssistantQuery(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{``, `{}`, `{"query":""}`, `{"query":"   "}`, `{"query":42}`, `{"query":null}`} {
		rr := env.do(t, http.MethodPost, "/assistant", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.Equal(t, queryRequiredMessage, decodeBody[errorBody](t, rr).Message)
	}

	rr := env.do(t, http.MethodPost, "/assistant", `{"query":" where to dance? "}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Visit Spectrum Lounge", decodeBody[map[string]string](t, rr)["response"])
	require.Equal(t, "where to dance?", env.app.Assistant.(*stubAssistant).lastQuery)
}

func TestImagesGenerate(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/generate-image", `{"prompt":"ab"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/generate-image", `{"prompt":"glitter galaxy"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	ok := decodeBody[imageResponse](t, rr)
	require.True(t, ok.Success)
	require.Equal(t, "https://img.test/a.png", ok.ImageURL)

	env.app.Images = stubImages{err: imagegen.ErrMissingAPIKey}
	rr = env.do(t, http.MethodPost, "/generate-image", `{"prompt":"glitter galaxy"}`)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	env.app.Images = stubImages{err: &imagegen.ProviderError{Status: 500}}
	rr = env.do(t, http.MethodPost, "/generate-image", `{"prompt":"glitter galaxy"}`)
	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.False(t, decodeBody[imageResponse](t, rr).Success)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	env.app.Checks = []HealthCheck{{Name: "postgres", Ping: func(context.Context) error { return nil }}}

	rr := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", decodeBody[healthResponse](t, rr).Status)

	env.app.Checks = append(env.app.Checks, HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("refused") }})
	rr = env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	h := decodeBody[healthResponse](t, rr)
	require.Equal(t, "degraded", h.Status)
	require.Equal(t, "down", h.Deps[1].Status)
	require.Equal(t, "refused", h.Deps[1].Message)
}

func TestOpenAPIDocument(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(openAPISpec, &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, paths, "/donations")
	require.Contains(t, paths, "/assistant")
}
