package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/pkg/utils"
	"github.com/notemap-service/internal/usecase"
	"github.com/notemap-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// PostHandler exposes the raw post store: ordered reads and the approval
// increment. Posts with malformed locations are included here; only the map
// view excludes them.
type PostHandler struct {
	postUC *usecase.PostUseCase
	logger *zap.Logger
}

func NewPostHandler(postUC *usecase.PostUseCase, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postUC: postUC,
		logger: logger,
	}
}

// List returns all posts newest first. ?category= filters server-side;
// ?categories=a,b selects several tags at once.
func (h *PostHandler) List(c *fiber.Ctx) error {
	if raw := c.Query("categories"); raw != "" {
		tags := strings.Split(raw, ",")
		posts, err := h.postUC.FetchByCategories(c.Context(), tags)
		if err != nil {
			return utils.SendError(c, err)
		}
		return utils.SendSuccess(c, posts, &utils.Meta{Total: len(posts)})
	}

	category := c.Query("category", domain.CategoryAll)
	posts, stale, err := h.postUC.Fetch(c.Context(), category)
	if err != nil {
		return utils.SendError(c, err)
	}
	if stale {
		c.Set("X-Data-Stale", "true")
	}
	return utils.SendSuccess(c, posts, &utils.Meta{Total: len(posts)})
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.postUC.Get(c.Context(), c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, post, nil)
}

// Approve atomically increments the post's good count.
func (h *PostHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	count, err := h.postUC.Approve(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.ApproveResponse{
		PostID:    id,
		GoodCount: count,
	}, nil)
}

// Categories returns the fixed filter tag set for the category buttons.
func (h *PostHandler) Categories(c *fiber.Ctx) error {
	tags := h.postUC.Categories()
	return utils.SendSuccess(c, dto.CategoriesResponse{
		All:        domain.CategoryAll,
		Categories: tags,
	}, &utils.Meta{Total: len(tags)})
}
