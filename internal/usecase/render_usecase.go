package usecase

import (
	"github.com/notemap-service/internal/config"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/mapview"
	"github.com/notemap-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// RenderUseCase composes the map render model: base map, a styled marker
// per visible post, the selected post's detail overlay and the optional
// user-location overlay.
type RenderUseCase struct {
	mapCfg config.MapConfig
	logger *zap.Logger
}

func NewRenderUseCase(mapCfg config.MapConfig, logger *zap.Logger) *RenderUseCase {
	return &RenderUseCase{
		mapCfg: mapCfg,
		logger: logger,
	}
}

// BuildView derives the render model from a session snapshot. Pure with
// respect to its inputs: the same posts and state always produce the same
// view.
func (uc *RenderUseCase) BuildView(sessionID string, posts []domain.Post, state mapview.State, degraded bool) *dto.MapView {
	visible := mapview.VisiblePosts(posts, state)

	markers := make([]dto.Marker, 0, len(visible))
	var overlay *dto.Overlay

	for _, p := range visible {
		pos, ok := p.Position()
		if !ok {
			// VisiblePosts already excluded these; keep the guard so a
			// malformed location can never panic the render.
			uc.logger.Debug("Skipping post with malformed location", zap.String("post_id", p.ID))
			continue
		}

		risk := p.EffectiveRiskLevel()
		markers = append(markers, dto.Marker{
			PostID:    p.ID,
			Category:  p.Category,
			Position:  pos,
			Style:     domain.StyleFor(p.Category, risk),
			GoodCount: p.GoodCount,
		})

		if state.SelectedID == p.ID {
			overlay = &dto.Overlay{
				PostID:    p.ID,
				Category:  p.Category,
				RiskLevel: risk,
				Message:   p.Message,
				ImageURL:  p.ImageURL,
				GoodCount: p.GoodCount,
				Position:  pos,
			}
		}
	}

	var here *dto.HereMarker
	if state.UserPosition != nil {
		here = &dto.HereMarker{
			Position: *state.UserPosition,
			RadiusKm: state.RadiusKm,
		}
	}

	return &dto.MapView{
		SessionID:    sessionID,
		Center:       domain.Point{Lat: uc.mapCfg.CenterLat, Lng: uc.mapCfg.CenterLng},
		Zoom:         uc.mapCfg.Zoom,
		Category:     state.Category,
		Markers:      markers,
		Overlay:      overlay,
		Here:         here,
		VisibleTotal: len(markers),
		Degraded:     degraded,
	}
}
