package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cognicore/autotag/internal/auth"
	"github.com/cognicore/autotag/pkg/autotag"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
	"github.com/cognicore/autotag/pkg/autotag/store"
)

type createRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=255"`
	Latitude    string `json:"latitude" validate:"omitempty,latitude"`
	Longitude   string `json:"longitude" validate:"omitempty,longitude"`
}

type updateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Latitude    *string `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *string `json:"longitude" validate:"omitempty,longitude"`
}

type tagsRequest struct {
	Text string `json:"text" validate:"max=10000"`
}

type cuisineResponse struct {
	Message string        `json:"message,omitempty"`
	Cuisine store.Cuisine `json:"cuisine"`
}

type listResponse struct {
	Cuisines []store.Cuisine `json:"cuisines"`
	// Filter is the attribute filter applied, absent when listing everything
	Filter map[string]string `json:"filter,omitempty"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Tags predicts attributes for free text without storing anything
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	var req tagsRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.catalog.Tags(req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tags": p})
}

// Search lists all cuisines, or only those matching the tags predicted for
// the prompt query parameter when it is present
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var prompt *string
	if vals, ok := r.URL.Query()["prompt"]; ok && len(vals) > 0 {
		prompt = &vals[0]
	}

	f, err := h.catalog.Filter(prompt)
	if err != nil {
		respondError(w, r, err)
		return
	}
	found, err := h.catalog.Find(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := listResponse{Cuisines: nonNil(found)}
	if !f.Empty() {
		resp.Filter = make(map[string]string)
		for name, v := range f.Map() {
			resp.Filter[string(name)] = v
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// Get returns one cuisine
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cuisineResponse{Cuisine: rec})
}

// ListMine returns the caller's cuisines
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	mine, err := h.catalog.ListMine(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listResponse{Cuisines: nonNil(mine)})
}

// Create tags and stores a new cuisine owned by the caller
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	userID, _ := auth.UserID(r.Context())
	rec, err := h.catalog.Create(r.Context(), userID, autotag.NewCuisine{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, cuisineResponse{Message: "Cuisine created successfully", Cuisine: rec})
}

// Update changes a cuisine owned by the caller
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := h.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	userID, _ := auth.UserID(r.Context())
	rec, err := h.catalog.Update(r.Context(), userID, chi.URLParam(r, "id"), autotag.CuisinePatch{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cuisineResponse{Message: "Cuisine updated successfully", Cuisine: rec})
}

// Delete removes a cuisine owned by the caller
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, r, fmt.Errorf("%w: id is required", internalerr.ErrInvalidInput))
		return
	}

	userID, _ := auth.UserID(r.Context())
	if err := h.catalog.Delete(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cuisine deleted successfully"})
}

func nonNil(cs []store.Cuisine) []store.Cuisine {
	if cs == nil {
		return []store.Cuisine{}
	}
	return cs
}
