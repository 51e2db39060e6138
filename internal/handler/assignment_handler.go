package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/middleware"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/service"
	"github.com/classboard/classboard-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	store   service.AttachmentStore
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc service.AssignmentService, store service.AttachmentStore, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: svc,
		store:   store,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	router.Get("", h.list)
	router.Get("/students/list", teacherOnly, h.listStudents)
	router.Get("/:id", h.get)
	router.Post("", teacherOnly, h.create)
	router.Put("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.Context(), actorFromContext(c))
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	studentIDs, err := parseStudentIDs(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attachments, err := collectAttachments(c, h.store)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AssignmentCreateRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		DueDate:     c.FormValue("due_date"),
		Visibility:  c.FormValue("visibility"),
		StudentIDs:  studentIDs,
		Attachments: attachments,
	}

	if raw := c.FormValue("max_marks"); raw != "" {
		maxMarks, err := parseFloat(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid max_marks")
		}
		payload.MaxMarks = &maxMarks
	}

	assignment, err := h.service.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AssignmentUpdateRequest{}
	if title := c.FormValue("title"); title != "" {
		payload.Title = &title
	}
	if description := c.FormValue("description"); description != "" {
		payload.Description = &description
	}
	if due := c.FormValue("due_date"); due != "" {
		payload.DueDate = &due
	}
	if visibility := c.FormValue("visibility"); visibility != "" {
		payload.Visibility = &visibility
	}
	if raw := c.FormValue("max_marks"); raw != "" {
		maxMarks, err := parseFloat(raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid max_marks")
		}
		payload.MaxMarks = &maxMarks
	}

	studentIDs, err := parseStudentIDs(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload.StudentIDs = studentIDs

	attachments, err := collectAttachments(c, h.store)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload.Attachments = attachments

	assignment, err := h.service.Update(c.Context(), actorFromContext(c), id, payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Delete(c.Context(), actorFromContext(c), id)
	if err != nil {
		return h.fail(c, err)
	}

	message := "assignment deleted"
	if len(result.Warnings) > 0 {
		message = "assignment deleted with warnings"
	}

	return utils.SendSuccess(c, message, result)
}

func (h *AssignmentHandler) listStudents(c *fiber.Ctx) error {
	students, err := h.service.ListStudents(c.Context(), actorFromContext(c))
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *AssignmentHandler) fail(c *fiber.Ctx, err error) error {
	if isInternal(err) {
		h.logger.Error().Err(err).Msg("internal server error")
	}
	return sendServiceError(c, err)
}
