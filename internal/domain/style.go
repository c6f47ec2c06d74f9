package domain

import "fmt"

// MarkerStyle is the visual style for a map pin. IconURL points at the
// classic colored-dot icon set the map widget renders at 32x32.
type MarkerStyle struct {
	Color    string `json:"color"`
	IconURL  string `json:"icon_url"`
	IconSize int    `json:"icon_size"`
}

const (
	markerIconURL  = "http://maps.google.com/mapfiles/ms/icons/%s-dot.png"
	markerIconSize = 32
)

// defaultMarkerColor is the style for categories outside the fixed set.
const defaultMarkerColor = "red"

// StyleFor maps a post's category and risk level to a marker style. Total:
// every input pair, including empty and unrecognized strings, resolves to a
// valid style. Risk levels only influence danger-category posts; the four
// known levels get their own color and anything else falls back to grey.
func StyleFor(category, riskLevel string) MarkerStyle {
	if category == CategoryDanger {
		return markerStyle(riskColor(riskLevel))
	}

	switch category {
	case CategoryScenery:
		return markerStyle("blue")
	case CategoryFood:
		return markerStyle("pink")
	case CategoryInsight:
		return markerStyle("purple")
	case CategoryUseful:
		return markerStyle("ltblue")
	default:
		return markerStyle(defaultMarkerColor)
	}
}

func riskColor(riskLevel string) string {
	switch riskLevel {
	case RiskDangerArea:
		return "red"
	case RiskPickpocketArea:
		return "orange"
	case RiskTrafficCaution:
		return "yellow"
	case RiskSafeRoute:
		return "green"
	default:
		// Unclassified danger post.
		return "grey"
	}
}

func markerStyle(color string) MarkerStyle {
	return MarkerStyle{
		Color:    color,
		IconURL:  fmt.Sprintf(markerIconURL, color),
		IconSize: markerIconSize,
	}
}
