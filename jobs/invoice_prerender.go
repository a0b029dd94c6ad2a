package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/clowee-erp/clowee-erp/internal/invoice"
)

// PDFRenderer converts rendered HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// InvoicePrerenderJob renders a sale invoice to PDF and caches the bytes so
// the download endpoint can serve them without a Gotenberg round-trip.
type InvoicePrerenderJob struct {
	Invoices *invoice.Service
	Renderer PDFRenderer
	Renders  *invoice.RenderStore
	Logger   *slog.Logger
}

// NewInvoicePrerenderJob wires dependencies for the prerender handler.
func NewInvoicePrerenderJob(invoices *invoice.Service, renderer PDFRenderer, renders *invoice.RenderStore, logger *slog.Logger) *InvoicePrerenderJob {
	return &InvoicePrerenderJob{Invoices: invoices, Renderer: renderer, Renders: renders, Logger: logger}
}

// Handle processes invoice prerender tasks.
func (j *InvoicePrerenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil || j.Renderer == nil || j.Renders == nil {
		return errors.New("invoice prerender: handler not configured")
	}
	var payload InvoicePrerenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.SaleID <= 0 {
		return asynq.SkipRetry
	}
	logger := j.logger().With(slog.Int64("sale_id", payload.SaleID))

	inv, err := j.Invoices.BuildSale(ctx, payload.SaleID)
	if err != nil {
		logger.Error("build invoice", slog.Any("error", err))
		return err
	}
	html, err := invoice.RenderSaleHTML(inv)
	if err != nil {
		logger.Error("render invoice html", slog.Any("error", err))
		return err
	}
	pdf, err := j.Renderer.RenderHTML(ctx, html)
	if err != nil {
		logger.Error("render invoice pdf", slog.Any("error", err))
		return err
	}

	if err := j.Renders.Put(ctx, payload.SaleID, pdf); err != nil {
		logger.Error("store rendered invoice", slog.Any("error", err))
		return err
	}
	logger.Info("invoice prerendered", slog.Int("bytes", len(pdf)))
	return nil
}

func (j *InvoicePrerenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInvoicePrerender))
	}
	return slog.Default().With(slog.String("job", TaskInvoicePrerender))
}
