package dto

import "github.com/notemap-service/internal/domain"

// Event payloads sent by the map widget.

type CategoryRequest struct {
	Category string `json:"category" validate:"required"`
}

type SelectRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

type PositionRequest struct {
	Lat      float64 `json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `json:"lng" validate:"min=-180,max=180"`
	RadiusKm float64 `json:"radius_km" validate:"required,gt=0"`
}

// PositionErrorRequest reports a geolocation failure kind from the browser.
type PositionErrorRequest struct {
	Kind string `json:"kind"`
}

type ApproveRequest struct {
	PostID string `json:"post_id" validate:"required"`
}

// MapView is the full render model for one map view: base map, markers for
// the visible subset, at most one detail overlay, and the optional
// user-location overlay.
type MapView struct {
	SessionID    string       `json:"session_id"`
	Center       domain.Point `json:"center"`
	Zoom         int          `json:"zoom"`
	Category     string       `json:"category"`
	Markers      []Marker     `json:"markers"`
	Overlay      *Overlay     `json:"overlay,omitempty"`
	Here         *HereMarker  `json:"here,omitempty"`
	VisibleTotal int          `json:"visible_total"`
	Degraded     bool         `json:"degraded,omitempty"`
	Notice       string       `json:"notice,omitempty"`
}

type Marker struct {
	PostID    string             `json:"post_id"`
	Category  string             `json:"category"`
	Position  domain.Point       `json:"position"`
	Style     domain.MarkerStyle `json:"style"`
	GoodCount int64              `json:"good_count"`
}

// Overlay is the detail window for the selected post.
type Overlay struct {
	PostID    string       `json:"post_id"`
	Category  string       `json:"category"`
	RiskLevel string       `json:"risk_level,omitempty"`
	Message   string       `json:"message"`
	ImageURL  string       `json:"image_url,omitempty"`
	GoodCount int64        `json:"good_count"`
	Position  domain.Point `json:"position"`
}

// HereMarker shows the user's own location and the proximity radius ring.
type HereMarker struct {
	Position domain.Point `json:"position"`
	RadiusKm float64      `json:"radius_km"`
}
