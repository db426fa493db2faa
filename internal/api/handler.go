// Package api exposes the resolution engine and the processing pipeline
// over HTTP.
package api

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
	"github.com/seiban/invoice-transfer-pipeline/internal/pipeline"
)

const version = "1.0.0"

// ResolveRequest asks for the registry codes of one name pair, or of every
// pair mentioned in a block of text when Text is set instead.
type ResolveRequest struct {
	BankName   string `json:"bankName"`
	BranchName string `json:"branchName"`
	Text       string `json:"text"`
}

// ResolvedMention is one resolved (or failed) pair in a resolve response.
type ResolvedMention struct {
	Pair  models.RawNamePair       `json:"pair"`
	Codes *models.ResolvedCodePair `json:"codes,omitempty"`
	Error string                   `json:"error,omitempty"`
}

// ProcessResponse reports the terminal state of one processed document.
type ProcessResponse struct {
	Success  bool                  `json:"success"`
	Source   string                `json:"source"`
	Decision models.Decision       `json:"decision"`
	Reason   string                `json:"reason,omitempty"`
	Invoice  *models.InvoiceRecord `json:"invoice,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Handler wires the HTTP routes to the pipeline.
type Handler struct {
	Pipeline *pipeline.Pipeline
}

// Register sets up the routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/resolve", h.HandleResolve)
	app.Post("/api/process", h.HandleProcess)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleResolve resolves either the explicit pair in the request or every
// pair mentioned in the request text.
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	ctx := c.UserContext()

	if req.Text != "" {
		mentions := h.Pipeline.ResolveMentions(ctx, req.Text)
		out := make([]ResolvedMention, 0, len(mentions))
		for _, m := range mentions {
			rm := ResolvedMention{Pair: m.Pair}
			if m.Err != nil {
				rm.Error = m.Err.Error()
			} else {
				codes := m.Codes
				rm.Codes = &codes
			}
			out = append(out, rm)
		}
		return c.JSON(fiber.Map{"mentions": out})
	}

	if req.BankName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "bankName or text required")
	}

	codes, err := h.Pipeline.ResolvePair(ctx, models.RawNamePair{
		BankName:   req.BankName,
		BranchName: req.BranchName,
	})
	if err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, models.ErrRegistryUnavailable) {
			status = fiber.StatusBadGateway
		}
		return fiber.NewError(status, err.Error())
	}
	return c.JSON(codes)
}

// HandleProcess accepts one uploaded invoice document and runs it through
// extraction, resolution and ledger admission.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "no file uploaded, use form field 'file'")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".pdf", ".txt", ".md", ".csv", ".text":
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unsupported file type "+ext)
	}

	tmp, err := os.CreateTemp("", "invoice-*"+ext)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "temp file creation failed")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(file, tmpPath); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save upload")
	}

	out := h.Pipeline.ProcessFile(c.UserContext(), tmpPath)
	out.Source = file.Filename

	resp := ProcessResponse{
		Success:  out.Decision == models.Admitted,
		Source:   out.Source,
		Decision: out.Decision,
		Reason:   out.Reason,
		Invoice:  out.Invoice,
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}

	status := fiber.StatusOK
	if out.Err != nil && errors.Is(out.Err, models.ErrRegistryUnavailable) {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(resp)
}
