package rest

import (
	"net/http"
	"time"

	"github.com/louisbranch/taskdeck/internal/platform/field"
	"github.com/louisbranch/taskdeck/internal/task"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      int     `json:"status"`
	Priority    int     `json:"priority"`
	TagIDs      []int64 `json:"tagIds"`
}

type updateTaskRequest struct {
	Title       field.Optional[string]  `json:"title"`
	Description field.Optional[string]  `json:"description"`
	StartDate   field.Optional[string]  `json:"startDate"`
	EndDate     field.Optional[string]  `json:"endDate"`
	Status      field.Optional[int]     `json:"status"`
	Priority    field.Optional[int]     `json:"priority"`
	TagIDs      field.Optional[[]int64] `json:"tagIds"`
}

type taskResponse struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"ownerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	StartDate   string        `json:"startDate"`
	EndDate     *string       `json:"endDate"`
	Status      int           `json:"status"`
	Priority    int           `json:"priority"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
	Tags        []tagResponse `json:"tags"`
}

func toTaskResponse(t task.Task) taskResponse {
	tags := make([]tagResponse, 0, len(t.Tags))
	for _, ref := range t.Tags {
		tags = append(tags, tagResponse{ID: ref.ID, Name: ref.Name})
	}
	var endDate *string
	if t.EndDate != nil {
		formatted := formatWireTime(*t.EndDate)
		endDate = &formatted
	}
	return taskResponse{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   formatWireTime(t.StartDate),
		EndDate:     endDate,
		Status:      int(t.Status),
		Priority:    int(t.Priority),
		CreatedAt:   formatWireTime(t.CreatedAt),
		UpdatedAt:   formatWireTime(t.UpdatedAt),
		Tags:        tags,
	}
}

func (h Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tasks, err := h.Tasks.ListForOwner(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	payload := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		payload = append(payload, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h Handler) getTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	found, err := h.Tasks.Get(r.Context(), taskID, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(found))
}

func (h Handler) createTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	input := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      task.Status(req.Status),
		Priority:    task.Priority(req.Priority),
		TagIDs:      req.TagIDs,
	}
	if req.StartDate != "" {
		startDate, err := parseWireTime(req.StartDate)
		if err != nil {
			writeBadRequest(w, "startDate must be an RFC 3339 timestamp")
			return
		}
		input.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseWireTime(*req.EndDate)
		if err != nil {
			writeBadRequest(w, "endDate must be an RFC 3339 timestamp")
			return
		}
		input.EndDate = &endDate
	}

	created, err := h.Tasks.Create(r.Context(), caller, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(created))
}

func (h Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	input := task.UpdateInput{TagIDs: req.TagIDs}
	if title, ok := req.Title.Value(); ok {
		input.Title = field.Set(title)
	}
	if description, ok := req.Description.Value(); ok {
		input.Description = field.Set(description)
	}
	if status, ok := req.Status.Value(); ok {
		input.Status = field.Set(task.Status(status))
	}
	if priority, ok := req.Priority.Value(); ok {
		input.Priority = field.Set(task.Priority(priority))
	}
	if raw, ok := req.StartDate.Value(); ok {
		startDate, err := parseWireTime(raw)
		if err != nil {
			writeBadRequest(w, "startDate must be an RFC 3339 timestamp")
			return
		}
		input.StartDate = field.Set(startDate)
	}
	if req.EndDate.Present() {
		if req.EndDate.IsNull() {
			input.EndDate = field.Null[time.Time]()
		} else if raw, ok := req.EndDate.Value(); ok {
			endDate, err := parseWireTime(raw)
			if err != nil {
				writeBadRequest(w, "endDate must be an RFC 3339 timestamp")
				return
			}
			input.EndDate = field.Set(endDate)
		}
	}

	updated, err := h.Tasks.Update(r.Context(), taskID, caller, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (h Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Tasks.Delete(r.Context(), taskID, caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
