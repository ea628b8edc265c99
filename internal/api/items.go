package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/mkoblar/sizzle/internal/asset"
	"github.com/mkoblar/sizzle/internal/imaging"
	"github.com/mkoblar/sizzle/internal/item"
	"github.com/mkoblar/sizzle/internal/model"
	"github.com/mkoblar/sizzle/internal/store"
	"github.com/mkoblar/sizzle/internal/vote"
)

// maxUploadBytes limits multipart item uploads.
const maxUploadBytes = 5 << 20

// ItemsHandler handles item CRUD, voting, and committed-image endpoints.
type ItemsHandler struct {
	Store   *store.Items
	Service *item.Service
	Assets  *asset.Store
}

type voteRequest struct {
	Like *int `json:"like"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.List(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, ok := h.fetch(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, found)
}

// Create handles POST /api/items. The body is multipart form data with an
// "item" JSON part and an "image" file part; the image is processed and
// staged here, before the lifecycle service runs.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	var draft model.Item
	if raw := r.FormValue("item"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &draft); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item payload")
			return
		}
	}

	staged, err := h.stageImage(r)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), CallerID(r.Context()), draft, staged)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/items/{id}, owner only. Two body shapes are
// accepted: a JSON field patch, or multipart form data carrying a new image
// alongside an "item" JSON patch part.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	var patch model.ItemPatch
	var staged *asset.Staged

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}

		if raw := r.FormValue("item"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &patch); err != nil {
				jsonError(w, http.StatusBadRequest, "invalid item payload")
				return
			}
		}

		var err error
		staged, err = h.stageImage(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if staged == nil {
			jsonError(w, http.StatusBadRequest, "image file required")
			return
		}
	} else {
		if err := decodeJSON(r, &patch); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	updated, err := h.Service.Update(r.Context(), current, patch, staged)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}, owner only.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), current); err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Vote handles POST /api/items/{id}/like. The vote value is validated here;
// the engine only ever sees one of the three recognized values.
func (h *ItemsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	current, ok := h.fetch(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Like == nil {
		jsonError(w, http.StatusBadRequest, "like value is required")
		return
	}

	v, err := vote.Parse(*req.Like)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "like must be 1, -1 or 0")
		return
	}

	updated, msg, err := h.Service.Vote(r.Context(), current, CallerID(r.Context()), v)
	if err != nil {
		writeError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{"message": msg, "item": updated})
}

// ServeImage handles GET /images/{file}, serving committed assets with a
// content-hash ETag.
func (h *ItemsHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	name := path.Base(r.PathValue("file"))
	if name == "." || name == "/" {
		jsonError(w, http.StatusBadRequest, "invalid image name")
		return
	}

	data, err := h.Assets.ReadCommitted(name)
	if err != nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	etag := `"` + asset.Hash(data) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mimeForName(name))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// stageImage processes and stages the uploaded "image" form file. A missing
// file yields (nil, nil); whether that is an error is the caller's decision.
func (h *ItemsHandler) stageImage(r *http.Request) (*asset.Staged, error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		return nil, err
	}

	return h.Assets.Stage(processed.Data, processed.MIME)
}

// fetch resolves {id} to an item, writing a 404 on absence.
func (h *ItemsHandler) fetch(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, "item id required")
		return nil, false
	}

	found, err := h.Store.Find(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return found, true
}

// fetchOwned resolves {id} and enforces that the caller owns the item.
func (h *ItemsHandler) fetchOwned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	found, ok := h.fetch(w, r)
	if !ok {
		return nil, false
	}
	if found.OwnerID != CallerID(r.Context()) {
		jsonError(w, http.StatusForbidden, "not the item owner")
		return nil, false
	}
	return found, true
}

// writeError maps service and store errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, item.ErrImageRequired):
		jsonError(w, http.StatusBadRequest, "image file required")
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, vote.ErrInvalidVote),
		errors.Is(err, asset.ErrUnsupportedFormat),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

func mimeForName(name string) string {
	switch path.Ext(name) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
