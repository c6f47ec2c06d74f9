package mapview

import (
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/pkg/utils"
)

// State is the filter and selection state of a single map view: active
// category, the selected post (at most one), and the optional user position
// driving the proximity filter. Values are immutable; every transition
// returns a new State, which keeps the derivations pure and testable.
type State struct {
	Category     string
	SelectedID   string
	UserPosition *domain.Point
	RadiusKm     float64
}

func NewState() State {
	return State{Category: domain.CategoryAll}
}

func (s State) SetCategory(tag string) State {
	s.Category = tag
	return s
}

func (s State) SelectPost(id string) State {
	s.SelectedID = id
	return s
}

func (s State) ClearSelection() State {
	s.SelectedID = ""
	return s
}

// SetUserPosition records the user's location for the proximity filter.
// It never touches the selection directly; a selection that falls outside
// the new radius is cleared by Reconcile as a derived consequence.
func (s State) SetUserPosition(p domain.Point, radiusKm float64) State {
	s.UserPosition = &p
	s.RadiusKm = radiusKm
	return s
}

func (s State) ClearUserPosition() State {
	s.UserPosition = nil
	s.RadiusKm = 0
	return s
}

// VisiblePosts derives the renderable subset: posts matching the active
// category, within the proximity radius when a user position is set, and
// with a normalizable location. Posts whose stored location cannot be
// normalized never render and never count toward the visible total.
func VisiblePosts(posts []domain.Post, s State) []domain.Post {
	visible := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		pos, ok := p.Position()
		if !ok {
			continue
		}
		if s.Category != "" && s.Category != domain.CategoryAll && p.Category != s.Category {
			continue
		}
		if s.UserPosition != nil && s.RadiusKm > 0 {
			d := utils.HaversineDistance(s.UserPosition.Lat, s.UserPosition.Lng, pos.Lat, pos.Lng)
			if d > s.RadiusKm {
				continue
			}
		}
		visible = append(visible, p)
	}
	return visible
}

// Reconcile clears a selection whose post is no longer in the visible
// subset, preserving the at-most-one-selection invariant after category or
// position changes.
func Reconcile(s State, visible []domain.Post) State {
	if s.SelectedID == "" {
		return s
	}
	for _, p := range visible {
		if p.ID == s.SelectedID {
			return s
		}
	}
	return s.ClearSelection()
}
