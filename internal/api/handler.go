// Package api serves statement conversion over HTTP with fiber.
package api

import (
	"bytes"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/card-statement-converter/internal/converter"
	"github.com/insightdelivered/card-statement-converter/internal/document"
	"github.com/insightdelivered/card-statement-converter/internal/logger"
	"github.com/insightdelivered/card-statement-converter/internal/models"
	"github.com/insightdelivered/card-statement-converter/internal/parser"
	"github.com/insightdelivered/card-statement-converter/internal/writer"
)

// HeaderRequestID carries the id every request is logged under.
const HeaderRequestID = "X-Request-ID"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Engine  string `json:"engine"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Converter *converter.Converter
	Version   string
	Log       zerolog.Logger
}

// NewApp builds the fiber app with middleware and routes registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 32
	}
	app := fiber.New(fiber.Config{
		AppName:               "card-statement-converter",
		BodyLimit:             bodyLimitMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.requestID)
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the API routes.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/api/health", h.HandleHealth)
	r.Post("/api/convert", h.HandleConvert)
}

func (h *Handler) requestID(c *fiber.Ctx) error {
	id := uuid.NewString()
	c.Set(HeaderRequestID, id)
	c.Locals("request_id", id)

	log := h.Log.With().Str("request_id", id).Logger()
	c.SetUserContext(logger.WithContext(c.UserContext(), log))
	return c.Next()
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: h.Version,
		Engine:  "fiber",
	})
}

// HandleConvert converts an uploaded statement and returns the file.
//
// Form fields: file (required PDF), password, format (legacy|modern, also
// old|new) and output (csv|xlsx).
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	pipeline, err := models.ParsePipeline(c.FormValue("format"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	format, err := writer.ParseFormat(c.FormValue("output"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	password := c.FormValue("password")
	if password == "" {
		password = converter.PasswordFromFilename(fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer f.Close()

	ctx := c.UserContext()
	log := logger.FromContext(ctx)
	log.Info().Str("file", fh.Filename).Str("pipeline", string(pipeline)).Str("output", string(format)).Msg("convert request")

	var out bytes.Buffer
	stmt, err := h.Converter.ConvertReader(ctx, f, fh.Size, password, pipeline, format, &out)
	if err != nil {
		status := statusFor(err)
		log.Warn().Err(err).Int("status", status).Msg("conversion failed")
		return writeError(c, status, err.Error())
	}

	name := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename)) + format.Extension()
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set("X-Record-Count", strconv.Itoa(len(stmt.Records)))
	c.Set("X-Defect-Count", strconv.Itoa(len(stmt.Defects)))
	return c.Send(out.Bytes())
}

// statusFor maps a conversion error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, document.ErrInvalidPassword):
		return fiber.StatusUnauthorized
	case errors.Is(err, document.ErrUnreadable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrUnsupportedPipeline):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	id, _ := c.Locals("request_id").(string)
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Error:     msg,
		RequestID: id,
	})
}

// errorHandler renders fiber's own errors, such as an oversized body or an
// unknown route, in the API's JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return writeError(c, status, err.Error())
}
