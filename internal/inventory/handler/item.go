package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	authmiddleware "github.com/pulsmedic/pulsmedic-backend/internal/auth/middleware"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/domain"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/export"
	"github.com/pulsmedic/pulsmedic-backend/internal/inventory/service"
	"github.com/pulsmedic/pulsmedic-backend/pkg/actor"
	"github.com/pulsmedic/pulsmedic-backend/pkg/httputil"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/permissions"
)

// InventoryService is the subset of the inventory service the handler needs
type InventoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, a *actor.Actor, in *domain.CategoryInput) (*domain.Category, error)
	ListItems(ctx context.Context, query string) ([]domain.Item, error)
	LowStock(ctx context.Context) ([]domain.Item, error)
	Expiring(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	CreateItem(ctx context.Context, a *actor.Actor, in *domain.ItemInput) (*domain.Item, error)
	UpdateItem(ctx context.Context, a *actor.Actor, id string, in *domain.ItemInput) (*domain.Item, error)
	RecordTransaction(ctx context.Context, a *actor.Actor, itemID string, in *domain.TransactionInput) (*service.TransactionResult, error)
	RecentTransactions(ctx context.Context) ([]domain.Transaction, error)
	Export(ctx context.Context, l *i18n.Localizer) ([]byte, error)
}

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	service InventoryService
	logger  *logger.Logger
	now     func() time.Time
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(svc InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  log,
		now:     time.Now,
	}
}

// Routes mounts the inventory endpoints
func (h *InventoryHandler) Routes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.With(authmiddleware.RequirePermission(permissions.InventoryCategories)).Post("/categories", h.CreateCategory)

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Get("/low-stock", h.LowStock)
		r.Get("/expiring", h.Expiring)
		r.Get("/{id}", h.GetItem)
		r.Put("/{id}", h.UpdateItem)
		r.With(authmiddleware.RequirePermission(permissions.InventoryTransact)).Post("/{id}/transactions", h.RecordTransaction)
	})

	r.Get("/transactions", h.RecentTransactions)
	r.With(authmiddleware.RequirePermission(permissions.InventoryExport)).Get("/export", h.Export)
}

// ListCategories lists categories
func (h *InventoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, categories)
}

// CreateCategory creates a category
func (h *InventoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), actor.FromContext(r.Context()), &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, category)
}

// ListItems lists items matching the optional ?q= search
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, items)
}

// LowStock lists items at or below their minimum stock level
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, items)
}

// Expiring lists items that expire soon or already have
func (h *InventoryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Expiring(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, items)
}

// GetItem gets an item by ID
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "inventory_item")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// CreateItem creates an item
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in domain.ItemInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), actor.FromContext(r.Context()), &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, item)
}

// UpdateItem updates an item
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "inventory_item")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.ItemInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), actor.FromContext(r.Context()), id, &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// RecordTransaction records a stock transaction against an item
func (h *InventoryHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id", "inventory_item")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	var in domain.TransactionInput
	if err := httputil.Bind(r, &in); err != nil {
		httputil.Error(w, r, err)
		return
	}

	result, err := h.service.RecordTransaction(r.Context(), actor.FromContext(r.Context()), id, &in)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.Created(w, result)
}

// RecentTransactions lists the latest stock transactions
func (h *InventoryHandler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.RecentTransactions(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	httputil.List(w, transactions)
}

// Export downloads the inventory as an XLSX workbook
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context(), i18n.LocalizerFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("inventar_%s.xlsx", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to write inventory export")
	}
}
