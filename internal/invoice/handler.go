package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clowee-erp/clowee-erp/internal/franchise"
	"github.com/clowee-erp/clowee-erp/internal/machine"
	"github.com/clowee-erp/clowee-erp/internal/platform/httpx"
	"github.com/clowee-erp/clowee-erp/internal/rbac"
	"github.com/clowee-erp/clowee-erp/internal/sales"
	"github.com/clowee-erp/clowee-erp/internal/settlement"
)

// PDFRenderer converts invoice HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// RenderSource serves prerendered invoice PDFs.
type RenderSource interface {
	Get(ctx context.Context, saleID int64) ([]byte, time.Time, error)
}

// Handler serves invoice views in JSON, HTML, CSV and PDF form.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     PDFRenderer
	renders RenderSource
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance. pdf may be nil, in which case PDF
// export responds 503. renders may be nil; single-sale PDF exports then
// always render live.
func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer, renders RenderSource, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		pdf:     pdf,
		renders: renders,
		rbac:    rbac,
	}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("invoice.view"))
		r.Get("/sales/{id}/invoice", h.saleInvoice)
		r.Get("/franchises/{id}/consolidated-invoice", h.consolidatedInvoice)
	})
}

func (h *Handler) saleInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	inv, err := h.service.BuildSale(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		httpx.JSON(w, http.StatusOK, inv)
	case "html":
		html, err := RenderSaleHTML(inv)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	case "pdf":
		if h.servePrerendered(w, r, id, inv.InvoiceNumber) {
			return
		}
		h.servePDF(w, r, inv.InvoiceNumber, func() (string, error) { return RenderSaleHTML(inv) })
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be json, html or pdf")
	}
}

func (h *Handler) consolidatedInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid franchise id")
		return
	}
	fromDate, toDate, err := dateRange(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	inv, err := h.service.BuildConsolidated(r.Context(), id, fromDate, toDate)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	name := fmt.Sprintf("consolidated-%d-%s", id, inv.FromDate)
	switch r.URL.Query().Get("format") {
	case "", "json":
		httpx.JSON(w, http.StatusOK, inv)
	case "html":
		html, err := RenderConsolidatedHTML(inv)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	case "csv":
		data, err := RenderConsolidatedCSV(inv)
		if err != nil {
			h.respondServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		_, _ = w.Write(data)
	case "pdf":
		h.servePDF(w, r, name, func() (string, error) { return RenderConsolidatedHTML(inv) })
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be json, html, csv or pdf")
	}
}

// servePrerendered writes the cached PDF when one exists and reports whether
// it handled the response.
func (h *Handler) servePrerendered(w http.ResponseWriter, r *http.Request, saleID int64, name string) bool {
	if h.renders == nil {
		return false
	}
	data, _, err := h.renders.Get(r.Context(), saleID)
	if err != nil {
		if !errors.Is(err, ErrNoRender) {
			h.logger.Warn("prerender lookup failed", slog.Any("error", err), slog.Int64("sale_id", saleID))
		}
		return false
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	_, _ = w.Write(data)
	return true
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, name string, render func() (string, error)) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "PDF rendering is not configured")
		return
	}
	html, err := render()
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	data, err := h.pdf.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("pdf render failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "PDF Failed", "PDF rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	_, _ = w.Write(data)
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	fromDate, err := time.Parse(settlement.DateLayout, q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
	}
	toDate, err := time.Parse(settlement.DateLayout, q.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
	}
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, errors.New("to must not precede from")
	}
	return fromDate, toDate, nil
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sales.ErrNotFound), errors.Is(err, franchise.ErrNotFound), errors.Is(err, machine.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("invoice request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
