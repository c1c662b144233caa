// Package rest exposes the task-tracking services as a JSON HTTP API.
package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/louisbranch/taskdeck/internal/account"
	"github.com/louisbranch/taskdeck/internal/auth/token"
	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
	"github.com/louisbranch/taskdeck/internal/platform/requestctx"
	"github.com/louisbranch/taskdeck/internal/tag"
	"github.com/louisbranch/taskdeck/internal/task"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	Accounts *account.Service
	Tags     *tag.Service
	Tasks    *task.Service
	Tokens   *token.Service
}

// NewRouter mounts every route with its middleware chain.
func NewRouter(h Handler) http.Handler {
	mux := http.NewServeMux()

	requireAuth := RequireAuth(h.Tokens)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/users", h.register)

	mux.Handle("GET /api/users/me", requireAuth(http.HandlerFunc(h.currentUser)))
	mux.Handle("GET /api/users/{id}", requireAuth(http.HandlerFunc(h.getUser)))
	mux.Handle("PATCH /api/users/{id}", requireAuth(http.HandlerFunc(h.updateUser)))
	mux.Handle("DELETE /api/users/{id}", requireAuth(http.HandlerFunc(h.deleteUser)))

	mux.Handle("GET /api/tasks", requireAuth(http.HandlerFunc(h.listTasks)))
	mux.Handle("POST /api/tasks", requireAuth(http.HandlerFunc(h.createTask)))
	mux.Handle("GET /api/tasks/{id}", requireAuth(http.HandlerFunc(h.getTask)))
	mux.Handle("PUT /api/tasks/{id}", requireAuth(http.HandlerFunc(h.updateTask)))
	mux.Handle("DELETE /api/tasks/{id}", requireAuth(http.HandlerFunc(h.deleteTask)))

	mux.Handle("GET /api/tags", requireAuth(http.HandlerFunc(h.listTags)))
	mux.Handle("POST /api/tags", requireAuth(http.HandlerFunc(h.createTag)))
	mux.Handle("GET /api/tags/{id}", requireAuth(http.HandlerFunc(h.getTag)))
	mux.Handle("PUT /api/tags/{id}", requireAuth(http.HandlerFunc(h.updateTag)))
	mux.Handle("DELETE /api/tags/{id}", requireAuth(http.HandlerFunc(h.deleteTag)))

	return Chain(mux, RecoverPanic(), RequestID(), Trace())
}

// callerID extracts the resolved user id placed by RequireAuth.
func callerID(r *http.Request) (int64, error) {
	userID, ok := requestctx.UserIDFromContext(r.Context())
	if !ok {
		return 0, token.ErrUnauthenticated
	}
	return userID, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.New(apperrors.CodeNotFound, "record not found")
	}
	return id, nil
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorPayload{
		Error: message,
		Code:  string(apperrors.CodeUnknown),
	})
}

const wireTimeLayout = time.RFC3339

// parseWireTime accepts RFC3339 timestamps. A zone-less timestamp is read
// as UTC rather than rejected, matching what mobile clients send.
func parseWireTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed.UTC(), nil
}

func formatWireTime(value time.Time) string {
	return value.UTC().Format(wireTimeLayout)
}
