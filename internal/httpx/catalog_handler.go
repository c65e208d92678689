package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
	Log  zerolog.Logger
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
		InStock:  q.Get("in_stock") == "true",
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		f.MaxPrice = &v
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	out, err := h.Repo.ListProducts(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !p.IsActive {
		writeErrorCode(w, http.StatusNotFound, CodeProductNotFound, "product not found or inactive", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
