package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/service"
	"github.com/classboard/classboard-api/internal/utils"
)

const maxAttachmentsPerRequest = 5

var allowedAttachmentTypes = []string{
	"application/pdf",
	"application/zip",
	"application/x-zip-compressed",
	"text/plain",
	"image/png",
	"image/jpeg",
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			actor.ID = id
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			actor.Role = role
		}
	}
	return actor
}

func parseStudentIDs(c *fiber.Ctx) ([]uint, error) {
	values := []string{}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		values = form.Value["student_ids"]
	}
	if len(values) == 0 {
		if raw := c.FormValue("student_ids"); raw != "" {
			values = []string{raw}
		}
	}

	ids := make([]uint, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parsed, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid student id %q", part)
			}
			ids = append(ids, uint(parsed))
		}
	}

	return ids, nil
}

// collectAttachments validates uploads with MIME sniffing, stores them and
// returns the stored-file triples the services consume.
func collectAttachments(c *fiber.Ctx, store service.AttachmentStore) ([]dto.AttachmentPayload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	files := form.File["attachments"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > maxAttachmentsPerRequest {
		return nil, fmt.Errorf("at most %d attachments per request", maxAttachmentsPerRequest)
	}

	payloads := make([]dto.AttachmentPayload, 0, len(files))
	for _, file := range files {
		if err := validateAttachmentType(file); err != nil {
			return nil, err
		}

		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open attachment: %w", err)
		}

		url, storageID, err := store.Upload(c.Context(), file.Filename, reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment: %w", err)
		}

		payloads = append(payloads, dto.AttachmentPayload{
			Filename:  file.Filename,
			FileURL:   url,
			StorageID: storageID,
		})
	}

	return payloads, nil
}

func validateAttachmentType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect attachment type: %w", err)
	}

	for _, allowed := range allowedAttachmentTypes {
		if mime.Is(allowed) {
			return nil
		}
	}

	return fmt.Errorf("unsupported attachment type: %s", mime.String())
}

// sendServiceError maps classified core errors onto HTTP status codes.
func sendServiceError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case service.IsNotFound(err):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case service.IsAccessDenied(err):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case service.IsDuplicate(err):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case service.IsValidation(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func isInternal(err error) bool {
	var coreErr *service.Error
	var validationErrors validator.ValidationErrors
	return !errors.As(err, &coreErr) && !errors.As(err, &validationErrors)
}
