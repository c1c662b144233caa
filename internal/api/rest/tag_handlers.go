package rest

import (
	"net/http"

	"github.com/louisbranch/taskdeck/internal/tag"
)

type tagRequest struct {
	Name string `json:"name"`
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toTagResponse(t tag.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name}
}

func (h Handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	payload := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		payload = append(payload, toTagResponse(t))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h Handler) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}
	created, err := h.Tags.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagResponse(created))
}

func (h Handler) getTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	found, err := h.Tags.Get(r.Context(), tagID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(found))
}

func (h Handler) updateTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}
	renamed, err := h.Tags.Update(r.Context(), tagID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(renamed))
}

func (h Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Tags.Delete(r.Context(), tagID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
