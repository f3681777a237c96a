package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comercia-pos/comercia-pos/internal/platform/httpx"
)

// Handler exposes product endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	validate      *validator.Validate
	searchLimiter func(http.Handler) http.Handler
}

// NewHandler constructs Handler. searchLimiter throttles the typeahead
// endpoint and may be nil.
func NewHandler(logger *slog.Logger, service *Service, searchLimiter func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		searchLimiter: searchLimiter,
	}
}

// MountRoutes registers endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/delete", h.deleteMany)
		r.Group(func(r chi.Router) {
			if h.searchLimiter != nil {
				r.Use(h.searchLimiter)
			}
			r.Get("/search", h.search)
		})
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Patch("/{id}/tax-type", h.applyTaxType)
		r.Get("/{id}/sales", h.salesByProduct)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) applyTaxType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TypeTax TaxType `json:"typeTax" validate:"required"`
	}
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	product, err := h.service.ApplyTaxType(r.Context(), chi.URLParam(r, "id"), body.TypeTax)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) deleteMany(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductIDs []string `json:"productIds" validate:"required,min=1"`
	}
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return
	}
	deleted, err := h.service.DeleteMany(r.Context(), body.ProductIDs)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) salesByProduct(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.SalesByProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if sales == nil {
		sales = []ProductSale{}
	}
	httpx.JSON(w, http.StatusOK, sales)
}
