package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/validoc/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/service"
)

// ValidationPipeline is what the handler needs from the service layer.
type ValidationPipeline interface {
	Validate(ctx context.Context, in service.Input) (*domain.ValidationReport, error)
}

type ValidateHandler struct {
	pipeline ValidationPipeline
	logger   *slog.Logger
}

func NewValidateHandler(pipeline ValidationPipeline, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{pipeline: pipeline, logger: logger}
}

// ValidateResponse is the endpoint's success payload.
type ValidateResponse struct {
	ID      uuid.UUID                `json:"id"`
	Summary domain.Summary           `json:"summary"`
	Report  *domain.ValidationReport `json:"report"`
}

// Validate handles POST /v1/validations. Artifacts arrive as multipart file
// parts named photo, signature, front and back; all are optional but at
// least one must be present.
func (h *ValidateHandler) Validate(c *fiber.Ctx) error {
	in := service.Input{
		Step:      c.FormValue("step"),
		PhotoKind: parsePhotoKind(c.FormValue("kind")),
	}

	var err error
	if in.Photo, err = filePart(c, "photo"); err != nil {
		return err
	}
	if in.Signature, err = filePart(c, "signature"); err != nil {
		return err
	}
	if in.Front, err = filePart(c, "front"); err != nil {
		return err
	}
	if in.Back, err = filePart(c, "back"); err != nil {
		return err
	}

	if raw := c.FormValue("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
		in.CustomerID = &id
	}

	report, err := h.pipeline.Validate(c.UserContext(), in)
	if err != nil {
		return err
	}

	h.logger.Info("validation completed",
		slog.String("id", report.ID.String()),
		slog.String("status", string(report.Status)),
		slog.Float64("score", report.Score),
	)

	return c.JSON(ValidateResponse{
		ID:      report.ID,
		Summary: report.Summarize(),
		Report:  report,
	})
}

// filePart reads one optional multipart file. A missing part is not an
// error; an unreadable one is.
func filePart(c *fiber.Ctx, name string) ([]byte, error) {
	header, err := c.FormFile(name)
	if err != nil {
		return nil, nil
	}
	return readPart(header)
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}
	return data, nil
}

func parsePhotoKind(raw string) analyzer.PhotoKind {
	switch analyzer.PhotoKind(raw) {
	case analyzer.KindPassport:
		return analyzer.KindPassport
	case analyzer.KindDriverLicense:
		return analyzer.KindDriverLicense
	default:
		return analyzer.KindProfile
	}
}
