package domain

import "math"

const earthRadiusKm = 6371.0

// Location is a venue pin, optionally linked to a campaign.
type Location struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name" validate:"required,max=200"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	Type       string  `json:"type" validate:"required,max=80"`
	CampaignID *int64  `json:"campaignId,omitempty" validate:"omitempty,gt=0"`
}

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Point returns the location's coordinates.
func (l Location) Point() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}
