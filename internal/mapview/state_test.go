package mapview_test

import (
	"encoding/json"
	"testing"

	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/mapview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(id, category, riskLevel, location string) domain.Post {
	return domain.Post{
		ID:        id,
		Message:   "test",
		Category:  category,
		RiskLevel: riskLevel,
		Location:  json.RawMessage(location),
	}
}

func TestVisiblePosts_CategoryFilter(t *testing.T) {
	posts := []domain.Post{
		post("p1", domain.CategoryDanger, domain.RiskDangerArea, `{"lat": 35.68, "lng": 139.76}`),
		post("p2", domain.CategoryScenery, "", `{"lat": 35.69, "lng": 139.70}`),
		post("p3", domain.CategoryFood, "", `{"lat": 35.66, "lng": 139.73}`),
	}

	all := mapview.VisiblePosts(posts, mapview.NewState())
	assert.Len(t, all, 3)

	danger := mapview.VisiblePosts(posts, mapview.NewState().SetCategory(domain.CategoryDanger))
	require.Len(t, danger, 1)
	assert.Equal(t, "p1", danger[0].ID)
}

// A post whose stored location cannot be normalized contributes no marker
// and is not counted, even under the "all" filter.
func TestVisiblePosts_MalformedLocationExcluded(t *testing.T) {
	posts := []domain.Post{
		post("p1", domain.CategoryDanger, domain.RiskDangerArea, `{"lat": 35.68, "lng": 139.76}`),
		post("p2", domain.CategoryScenery, "", `"abc"`),
	}

	visible := mapview.VisiblePosts(posts, mapview.NewState())
	require.Len(t, visible, 1)
	assert.Equal(t, "p1", visible[0].ID)
}

func TestVisiblePosts_ProximityFilter(t *testing.T) {
	// About 5 km due north of Tokyo Station.
	posts := []domain.Post{
		post("near", domain.CategoryScenery, "", `{"lat": 35.726151, "lng": 139.767125}`),
	}
	here := domain.Point{Lat: 35.681236, Lng: 139.767125}

	within1 := mapview.VisiblePosts(posts, mapview.NewState().SetUserPosition(here, 1))
	assert.Empty(t, within1)

	within10 := mapview.VisiblePosts(posts, mapview.NewState().SetUserPosition(here, 10))
	assert.Len(t, within10, 1)
}

func TestStateTransitions_SelectionInvariant(t *testing.T) {
	s := mapview.NewState()
	assert.Empty(t, s.SelectedID)

	s = s.SelectPost("p1")
	assert.Equal(t, "p1", s.SelectedID)

	// Selecting another post overwrites, never accumulates.
	s = s.SelectPost("p2")
	assert.Equal(t, "p2", s.SelectedID)

	s = s.ClearSelection()
	assert.Empty(t, s.SelectedID)
}

func TestStateTransitions_Immutable(t *testing.T) {
	base := mapview.NewState()
	_ = base.SetCategory(domain.CategoryFood)
	_ = base.SelectPost("p9")

	assert.Equal(t, domain.CategoryAll, base.Category)
	assert.Empty(t, base.SelectedID)
}

// Switching category away from the selected post's tag clears the
// selection implicitly, because the post leaves the visible subset.
func TestReconcile_CategoryChangeClearsDroppedSelection(t *testing.T) {
	posts := []domain.Post{
		post("p1", domain.CategoryDanger, domain.RiskDangerArea, `{"lat": 35.68, "lng": 139.76}`),
		post("p2", domain.CategoryScenery, "", `{"lat": 35.69, "lng": 139.70}`),
	}

	s := mapview.NewState().SetCategory(domain.CategoryDanger).SelectPost("p1")

	s = s.SetCategory(domain.CategoryScenery)
	s = mapview.Reconcile(s, mapview.VisiblePosts(posts, s))
	assert.Empty(t, s.SelectedID)
}

func TestReconcile_SelectionSurvivesWhenStillVisible(t *testing.T) {
	posts := []domain.Post{
		post("p1", domain.CategoryDanger, domain.RiskDangerArea, `{"lat": 35.68, "lng": 139.76}`),
	}

	s := mapview.NewState().SelectPost("p1")

	// Category change to the same tag the post carries keeps it visible.
	s = s.SetCategory(domain.CategoryDanger)
	s = mapview.Reconcile(s, mapview.VisiblePosts(posts, s))
	assert.Equal(t, "p1", s.SelectedID)
}

// SetUserPosition itself never touches the selection; only reconciliation
// against the shrunken subset does.
func TestSetUserPosition_DoesNotAlterSelection(t *testing.T) {
	s := mapview.NewState().SelectPost("p1")
	s = s.SetUserPosition(domain.Point{Lat: 35.681236, Lng: 139.767125}, 3)
	assert.Equal(t, "p1", s.SelectedID)
	require.NotNil(t, s.UserPosition)
	assert.Equal(t, 3.0, s.RadiusKm)
}
