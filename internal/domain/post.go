package domain

import (
	"encoding/json"
	"time"
)

// Category labels are the exact strings the posting form writes. The reader
// side must match them case-sensitively, so they live here as constants.
const (
	CategoryAll     = "すべて"
	CategoryScenery = "風景"
	CategoryDanger  = "危険情報"
	CategoryFood    = "グルメ"
	CategoryInsight = "豆知識"
	CategoryUseful  = "お役立ち"
)

// Risk levels apply only to CategoryDanger posts.
const (
	RiskDangerArea     = "危険エリア"
	RiskPickpocketArea = "スリ多発地域"
	RiskTrafficCaution = "交通事故注意"
	RiskSafeRoute      = "安全ルート"
)

// Categories returns the fixed tag set, in filter-button order.
func Categories() []string {
	return []string{
		CategoryScenery,
		CategoryDanger,
		CategoryFood,
		CategoryInsight,
		CategoryUseful,
	}
}

// KnownCategory reports whether tag is one of the fixed labels.
func KnownCategory(tag string) bool {
	switch tag {
	case CategoryScenery, CategoryDanger, CategoryFood, CategoryInsight, CategoryUseful:
		return true
	}
	return false
}

// KnownRiskLevel reports whether level is one of the fixed risk labels.
func KnownRiskLevel(level string) bool {
	switch level {
	case RiskDangerArea, RiskPickpocketArea, RiskTrafficCaution, RiskSafeRoute:
		return true
	}
	return false
}

// Post is a user-submitted geotagged note. Location keeps the raw stored
// encoding, which varies across legacy writers; use Position to get the
// canonical coordinate.
type Post struct {
	ID        string          `json:"id" db:"id"`
	Message   string          `json:"message" db:"message"`
	Category  string          `json:"category" db:"category"`
	RiskLevel string          `json:"risk_level,omitempty" db:"risk_level"`
	Location  json.RawMessage `json:"location" db:"location"`
	ImageURL  string          `json:"image_url,omitempty" db:"image_url"`
	GoodCount int64           `json:"good_count" db:"good_count"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Position normalizes the stored location. ok is false when the stored
// encoding is malformed; such a post stays readable but never renders.
func (p *Post) Position() (Point, bool) {
	return NormalizeLocation(p.Location)
}

// EffectiveRiskLevel returns the risk level only when the post actually
// belongs to the danger category. A leftover risk level on any other
// category is stored data we deliberately ignore on read.
func (p *Post) EffectiveRiskLevel() string {
	if p.Category != CategoryDanger {
		return ""
	}
	return p.RiskLevel
}

// SubmittedPost is what the posting form publishes for ingestion. The store
// assigns ID and CreatedAt.
type SubmittedPost struct {
	Message   string          `json:"message" validate:"required"`
	Category  string          `json:"category" validate:"required,oneof=風景 危険情報 グルメ 豆知識 お役立ち"`
	RiskLevel string          `json:"risk_level,omitempty" validate:"omitempty,oneof=危険エリア スリ多発地域 交通事故注意 安全ルート"`
	Location  json.RawMessage `json:"location" validate:"required"`
	ImageURL  string          `json:"image_url,omitempty" validate:"omitempty,url"`
}
