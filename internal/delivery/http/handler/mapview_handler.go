package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/mapview"
	apperrors "github.com/notemap-service/internal/pkg/errors"
	"github.com/notemap-service/internal/pkg/utils"
	"github.com/notemap-service/internal/pkg/validator"
	"github.com/notemap-service/internal/usecase"
	"github.com/notemap-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// MapViewHandler drives map sessions: it translates widget events
// (marker clicks, map clicks, filter buttons, position reports) into state
// transitions and answers every event with the updated render model.
type MapViewHandler struct {
	sessions *mapview.Registry
	renderUC *usecase.RenderUseCase
	logger   *zap.Logger
}

func NewMapViewHandler(sessions *mapview.Registry, renderUC *usecase.RenderUseCase, logger *zap.Logger) *MapViewHandler {
	return &MapViewHandler{
		sessions: sessions,
		renderUC: renderUC,
		logger:   logger,
	}
}

func (h *MapViewHandler) render(c *fiber.Ctx, s *mapview.Session, notice string) error {
	posts, state, degraded := s.Snapshot()
	view := h.renderUC.BuildView(s.ID, posts, state, degraded)
	view.Notice = notice
	return utils.SendSuccess(c, view, &utils.Meta{Total: view.VisibleTotal})
}

// Open creates a map session and returns the initial view.
func (h *MapViewHandler) Open(c *fiber.Ctx) error {
	s := h.sessions.Open(c.Context())
	return h.render(c, s, "")
}

// View returns the current render model.
func (h *MapViewHandler) View(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}

// Close tears the session down; late async results become no-ops.
func (h *MapViewHandler) Close(c *fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"closed": true}, nil)
}

// SetCategory handles a filter button press.
func (h *MapViewHandler) SetCategory(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	if err := s.SetCategory(req.Category); err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}

// Select handles a marker click. Clicking the selected marker again closes
// the overlay.
func (h *MapViewHandler) Select(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	if err := s.Select(req.PostID); err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}

// Deselect handles a click on empty map area or the overlay close button.
func (h *MapViewHandler) Deselect(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := s.Deselect(); err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}

// SetPosition enables the proximity filter around the reported location.
func (h *MapViewHandler) SetPosition(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	if err := s.SetUserPosition(domain.Point{Lat: req.Lat, Lng: req.Lng}, req.RadiusKm); err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}

// PositionError records a geolocation failure. The position stays at its
// prior value and the response carries a per-kind user notice.
func (h *MapViewHandler) PositionError(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PositionErrorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	notice, err := s.ReportGeolocationFailure(req.Kind)
	if err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, notice)
}

// Approve handles the overlay's approve affordance: atomic increment, then
// the updated view where marker list and overlay show the same new count.
func (h *MapViewHandler) Approve(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest)
	}

	if _, err := s.Approve(c.Context(), req.PostID); err != nil {
		return utils.SendError(c, err)
	}
	return h.render(c, s, "")
}
