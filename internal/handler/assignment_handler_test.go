package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/classboard/classboard-api/internal/config"
	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/handler"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
	"github.com/classboard/classboard-api/internal/router"
	"github.com/classboard/classboard-api/internal/service"
)

type testStore struct{}

func (s *testStore) Upload(_ context.Context, name string, _ io.Reader) (string, string, error) {
	return "https://files.test/" + name, "test/" + name, nil
}

func (s *testStore) Release(_ context.Context, _ string) error {
	return nil
}

// The stub identity middleware reads the acting user from request headers so
// each request in a test can pick its own role.
func testIdentity(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func setupTestApp(t *testing.T, name string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.AssignmentAttachment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	store := &testStore{}

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, validate, store, nil, nil, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, nil, nil, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, submissionRepo, nil, time.Minute, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, store, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, store, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		JWTMiddleware:     testIdentity,
	})

	return app, db
}

func seedTestUsers(t *testing.T, db *gorm.DB) (models.User, models.User) {
	t.Helper()
	teacher := models.User{Name: "Teacher", Email: "teacher@example.com", Role: models.RoleTeacher}
	student := models.User{Name: "Student", Email: "student@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&teacher).Error)
	require.NoError(t, db.Create(&student).Error)
	return teacher, student
}

func asUser(req *http.Request, user models.User) *http.Request {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
	req.Header.Set("X-Test-Role", user.Role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestAssignmentHandlerCreateAndGet(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_create")
	teacher, student := seedTestUsers(t, db)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Lab Report"))
	require.NoError(t, writer.WriteField("description", "Submit the measurements"))
	require.NoError(t, writer.WriteField("due_date", time.Now().Add(3*time.Hour).Format(time.RFC3339)))
	require.NoError(t, writer.WriteField("max_marks", "50"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/assignments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(asUser(req, teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	require.Equal(t, "assignment created", created.Message)
	require.NotZero(t, created.Data.ID)
	require.Equal(t, 50.0, created.Data.MaxMarks)
	require.Equal(t, models.VisibilityAll, created.Data.Visibility)

	getReq := httptest.NewRequest("GET", "/api/v1/assignments/"+strconv.FormatUint(uint64(created.Data.ID), 10), nil)
	getResp, err := app.Test(asUser(getReq, student))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)
}

func TestAssignmentHandlerCreateForbiddenForStudents(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_forbidden")
	_, student := seedTestUsers(t, db)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Nope"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/assignments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(asUser(req, student))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssignmentHandlerCreateValidationFailure(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_validation")
	teacher, _ := seedTestUsers(t, db)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("description", "missing title and due date"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/assignments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(asUser(req, teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var failed struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &failed)
	require.False(t, failed.Success)
	require.NotEmpty(t, failed.Message)
}

func TestAssignmentHandlerIndividualVisibilityHidesFromOthers(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_individual")
	teacher, student := seedTestUsers(t, db)

	outsider := models.User{Name: "Outsider", Email: "outsider@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&outsider).Error)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Scoped work"))
	require.NoError(t, writer.WriteField("description", "For one student"))
	require.NoError(t, writer.WriteField("due_date", time.Now().Add(3*time.Hour).Format(time.RFC3339)))
	require.NoError(t, writer.WriteField("visibility", models.VisibilityIndividual))
	require.NoError(t, writer.WriteField("student_ids", strconv.FormatUint(uint64(student.ID), 10)))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/v1/assignments", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(asUser(req, teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &created)
	id := strconv.FormatUint(uint64(created.Data.ID), 10)

	allowed, err := app.Test(asUser(httptest.NewRequest("GET", "/api/v1/assignments/"+id, nil), student))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, allowed.StatusCode)

	denied, err := app.Test(asUser(httptest.NewRequest("GET", "/api/v1/assignments/"+id, nil), outsider))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, denied.StatusCode)

	listResp, err := app.Test(asUser(httptest.NewRequest("GET", "/api/v1/assignments", nil), outsider))
	require.NoError(t, err)
	var listed struct {
		Data []dto.AssignmentResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listed)
	require.Empty(t, listed.Data)
}

func TestAssignmentHandlerDelete(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_delete")
	teacher, _ := seedTestUsers(t, db)

	assignment := models.Assignment{Title: "Doomed", Description: "d", DueDate: time.Now().Add(time.Hour), Visibility: models.VisibilityAll, MaxMarks: 100, CreatedBy: teacher.ID}
	require.NoError(t, db.Create(&assignment).Error)

	id := strconv.FormatUint(uint64(assignment.ID), 10)
	resp, err := app.Test(asUser(httptest.NewRequest("DELETE", "/api/v1/assignments/"+id, nil), teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	missing, err := app.Test(asUser(httptest.NewRequest("DELETE", "/api/v1/assignments/"+id, nil), teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, missing.StatusCode)
}

func TestAssignmentHandlerListStudents(t *testing.T) {
	app, db := setupTestApp(t, "handler_assignment_students")
	teacher, student := seedTestUsers(t, db)

	resp, err := app.Test(asUser(httptest.NewRequest("GET", "/api/v1/assignments/students/list", nil), teacher))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed struct {
		Data []dto.StudentResponse `json:"data"`
	}
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 1)
	require.Equal(t, student.ID, listed.Data[0].ID)

	denied, err := app.Test(asUser(httptest.NewRequest("GET", "/api/v1/assignments/students/list", nil), student))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, denied.StatusCode)
}
