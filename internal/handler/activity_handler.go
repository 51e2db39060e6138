package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/middleware"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/service"
	"github.com/classboard/classboard-api/internal/utils"
)

// ActivityHandler exposes the audit trail to teachers.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: svc,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", middleware.RequireRole(models.RoleTeacher), h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	req := dto.ActivityListRequest{
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
	}

	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		req.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size", "20")); err == nil {
		req.PageSize = pageSize
	}
	if actorRaw := c.Query("actor_id"); actorRaw != "" {
		if actorID, err := strconv.ParseUint(actorRaw, 10, 64); err == nil {
			id := uint(actorID)
			req.ActorID = &id
		}
	}

	activities, err := h.service.List(c.Context(), req)
	if err != nil {
		if isInternal(err) {
			h.logger.Error().Err(err).Msg("internal server error")
		}
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "activity retrieved", activities)
}
