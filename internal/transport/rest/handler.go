// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/shopkit/products-api/internal/errors"
	"github.com/shopkit/products-api/internal/query"
	"github.com/shopkit/products-api/internal/service"
	"github.com/shopkit/products-api/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	validate := validator.New()
	// notblank rejects values that are empty after trimming.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	return &Handler{
		service:  service,
		validate: validate,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
// The auth middleware guards the products subtree; the banner and health
// endpoints stay open.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)
		r.Get("/stats", h.Stats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/", h.Index)
	r.Get("/healthz", h.HealthCheck)
	r.NotFound(h.NotFound)
}

type listResponse struct {
	Success    bool                 `json:"success"`
	Data       []service.ProductDto `json:"data"`
	Pagination query.Pagination     `json:"pagination"`
	Filters    query.Filters        `json:"filters"`
}

type searchResponse struct {
	Success bool                 `json:"success"`
	Data    []service.ProductDto `json:"data"`
	Query   string               `json:"query"`
	Count   int                  `json:"count"`
}

type statsResponse struct {
	Success bool              `json:"success"`
	Data    *service.StatsDto `json:"data"`
}

type productResponse struct {
	Success bool                `json:"success"`
	Data    *service.ProductDto `json:"data"`
	Message string              `json:"message,omitempty"`
}

// List retrieves one page of products after filtering and sorting.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	params := paramsFromRequest(r)

	mLogger.DebugContext(r.Context(), "Received request to list products", "params", params)
	page, err := h.service.List(r.Context(), params)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list",
		"count", len(page.Items), "total", page.Pagination.Total)
	web.RespondJSON(w, mLogger, http.StatusOK, listResponse{
		Success:    true,
		Data:       page.Items,
		Pagination: page.Pagination,
		Filters:    page.Filters,
	})
}

// Search performs a substring search across name, description and category.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	q := r.URL.Query().Get("q")

	mLogger.DebugContext(r.Context(), "Received search request", "q", q)
	results, err := h.service.Search(r.Context(), q)
	if err != nil {
		if errors.Is(err, perrors.ErrEmptySearchQuery) {
			web.RespondError(w, mLogger, http.StatusBadRequest, `Search query parameter "q" is required`)
			return
		}
		mLogger.ErrorContext(r.Context(), "Error searching products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to search products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, searchResponse{
		Success: true,
		Data:    results,
		Query:   q,
		Count:   len(results),
	})
}

// Stats returns aggregate statistics over the full collection.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing product statistics", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, statsResponse{Success: true, Data: stats})
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{Success: true, Data: found})
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateBody(w, r, mLogger, createDto) {
		return
	}

	newProduct, err := h.service.Create(r.Context(), createDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, productResponse{
		Success: true,
		Data:    newProduct,
		Message: "Product created successfully",
	})
}

// Update merges the provided fields onto an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	var updateDto service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateBody(w, r, mLogger, updateDto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, updateDto)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{
		Success: true,
		Data:    updated,
		Message: "Product updated successfully",
	})
}

// DeleteByID deletes a product by its ID and returns the deleted record.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, productResponse{
		Success: true,
		Data:    deleted,
		Message: "Product deleted successfully",
	})
}

// Index is the service banner endpoint.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusOK, map[string]any{
		"message":   "Products API",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"products": "/api/v1/products",
			"search":   "/api/v1/products/search",
			"stats":    "/api/v1/products/stats",
		},
	})
}

// NotFound renders unmatched routes as JSON.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.loggerWithReqID(r), http.StatusNotFound, map[string]string{
		"error":  "Route not found",
		"path":   r.URL.Path,
		"method": r.Method,
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// validateBody runs struct validation and renders per-field messages on failure.
func (h *Handler) validateBody(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, body any) bool {
	if err := h.validate.Struct(body); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "gte", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// paramsFromRequest lifts the raw query string values into query.Params.
// Parsing and defaulting happen inside the pipeline.
func paramsFromRequest(r *http.Request) query.Params {
	q := r.URL.Query()
	return query.Params{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		InStock:  q.Get("inStock"),
		MinPrice: q.Get("minPrice"),
		MaxPrice: q.Get("maxPrice"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     q.Get("page"),
		Limit:    q.Get("limit"),
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
