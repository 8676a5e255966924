package shopapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cast"

	"github.com/fullstack/shopapp/pkg/catalog"
	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// Shop handlers.

// handleCreateShop creates a shop from the JSON body. Any id in the body is
// ignored.
//
// Response:
//   - 201 Created: the stored shop, with its generated id and creation date
//   - 400 Bad Request: malformed JSON or a validation failure (overlapping
//     opening hours, missing name, day outside 0-6, ...)
//   - 503 Service Unavailable: read-only mode
//
// The shop is mirrored to the search index after the relational write; an
// index failure does not fail the request.
func (a *App) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	var shop models.Shop
	if err := json.NewDecoder(r.Body).Decode(&shop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saved, err := a.service.CreateShop(r.Context(), &shop)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// handleUpdateShop replaces the shop identified by the id in the body.
func (a *App) handleUpdateShop(w http.ResponseWriter, r *http.Request) {
	var shop models.Shop
	if err := json.NewDecoder(r.Body).Decode(&shop); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saved, err := a.service.UpdateShop(r.Context(), &shop)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (a *App) handleGetShop(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseShopID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid shop ID")
		return
	}

	shop, err := a.service.GetShop(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

// handleDeleteShop detaches the shop's products, then deletes the shop.
func (a *App) handleDeleteShop(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseShopID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid shop ID")
		return
	}

	if err := a.service.DeleteShop(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleListShops lists shops through the query router.
//
// Query parameters:
//   - search: case-insensitive name substring, answered by the search index
//   - sortBy: name, createdAt, or any other value for product count order;
//     when present every other filter is ignored
//   - inVacations: true or false
//   - createdAfter, createdBefore: YYYY-MM-DD
//   - page, size: zero-based page and page size (default 20, max 100)
func (a *App) handleListShops(w http.ResponseWriter, r *http.Request) {
	query, err := parseShopQuery(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	page, err := parsePageRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.service.ListShops(r.Context(), query, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Product handlers.

func (a *App) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saved, err := a.service.CreateProduct(r.Context(), &product)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (a *App) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saved, err := a.service.UpdateProduct(r.Context(), &product)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (a *App) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProductID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := a.service.GetProduct(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *App) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseProductID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := a.service.DeleteProduct(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleListProducts lists products, optionally narrowed by shopId and
// categoryId.
func (a *App) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var filter store.ProductFilter
	values := r.URL.Query()

	if s := values.Get("shopId"); s != "" {
		id, err := models.ParseShopID(s)
		if err != nil {
			a.writeError(w, r, invalidParam("shopId", s))
			return
		}
		filter.ShopID = &id
	}
	if s := values.Get("categoryId"); s != "" {
		id, err := models.ParseCategoryID(s)
		if err != nil {
			a.writeError(w, r, invalidParam("categoryId", s))
			return
		}
		filter.CategoryID = &id
	}
	page, err := parsePageRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.service.ListProducts(r.Context(), filter, page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Category handlers.

func (a *App) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	saved, err := a.service.CreateCategory(r.Context(), &category)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (a *App) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseCategoryID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := a.service.GetCategory(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// handleDeleteCategory removes the category from its products, then deletes
// it.
func (a *App) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseCategoryID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := a.service.DeleteCategory(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.service.ListCategories(r.Context(), page)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Admin handlers.

// handleRoutes lists the shop query routing rules in the order they are
// tried.
func (a *App) handleRoutes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"rules": a.service.Router().Rules(),
	})
}

type readOnlyRequest struct {
	ReadOnly *bool `json:"readOnly"`
}

func (a *App) handleGetReadOnly(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"readOnly": a.IsReadOnly()})
}

// handleSetReadOnly switches read-only mode. The admin API is not
// authenticated; expose it on internal networks only.
func (a *App) handleSetReadOnly(w http.ResponseWriter, r *http.Request) {
	var req readOnlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReadOnly == nil {
		respondError(w, http.StatusBadRequest, `Invalid request payload, expected {"readOnly": true|false}`)
		return
	}

	a.SetReadOnly(*req.ReadOnly)
	respondJSON(w, http.StatusOK, map[string]bool{"readOnly": a.IsReadOnly()})
}

// handleHealth reports whether both stores answer.
//
// Response:
//   - 200 OK: {"status": "healthy", ...}
//   - 503 Service Unavailable: {"status": "unhealthy", ...} with the failing
//     store named in "database" or "index"
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	response := map[string]any{
		"status":   "healthy",
		"database": "ok",
		"index":    "ok",
		"readOnly": a.IsReadOnly(),
		"time":     time.Now().Unix(),
	}

	if err := a.store.Ping(ctx); err != nil {
		a.logger.Error().Err(err).Msg("database health check failed")
		response["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := a.index.Ping(ctx); err != nil {
		a.logger.Error().Err(err).Msg("search index health check failed")
		response["index"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if status != http.StatusOK {
		response["status"] = "unhealthy"
	}
	respondJSON(w, status, response)
}

// parseShopQuery reads the optional shop listing parameters. Empty values
// count as absent.
func parseShopQuery(r *http.Request) (catalog.ShopQuery, error) {
	var q catalog.ShopQuery
	values := r.URL.Query()

	if s := values.Get("search"); s != "" {
		q.Name = &s
	}
	if s := values.Get("sortBy"); s != "" {
		q.SortBy = &s
	}
	if s := values.Get("inVacations"); s != "" {
		v, err := cast.ToBoolE(s)
		if err != nil {
			return q, invalidParam("inVacations", s)
		}
		q.InVacations = &v
	}
	for name, target := range map[string]**models.Date{
		"createdAfter":  &q.CreatedAfter,
		"createdBefore": &q.CreatedBefore,
	} {
		s := values.Get(name)
		if s == "" {
			continue
		}
		d, err := models.ParseDate(s)
		if err != nil {
			return q, &catalog.ValidationError{
				Violations: []string{fmt.Sprintf("%s: invalid date %q, expected YYYY-MM-DD", name, s)},
			}
		}
		*target = &d
	}
	return q, nil
}

// parsePageRequest reads page and size. Out of range values are clamped.
func parsePageRequest(r *http.Request) (models.PageRequest, error) {
	values := r.URL.Query()
	var page, size int

	if s := values.Get("page"); s != "" {
		v, err := cast.ToIntE(s)
		if err != nil {
			return models.PageRequest{}, invalidParam("page", s)
		}
		page = v
	}
	if s := values.Get("size"); s != "" {
		v, err := cast.ToIntE(s)
		if err != nil {
			return models.PageRequest{}, invalidParam("size", s)
		}
		size = v
	}
	return models.NewPageRequest(page, size), nil
}

func invalidParam(name, value string) error {
	return &catalog.ValidationError{
		Violations: []string{fmt.Sprintf("%s: invalid value %q", name, value)},
	}
}

// writeError maps catalog errors to HTTP statuses. Persistence failures are
// logged with their cause and answered with a generic message.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case catalog.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case catalog.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrReadOnly):
		respondError(w, http.StatusServiceUnavailable, store.ErrReadOnly.Error())
	default:
		event := a.logger.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path)
		var perr *catalog.PersistenceError
		if errors.As(err, &perr) {
			event = event.Str("op", perr.Op).AnErr("cause", perr.Cause())
		}
		event.Msg("request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondJSON writes payload as JSON with the given status. A nil payload
// writes headers only.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
