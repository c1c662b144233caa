package rest

import (
	"net/http"

	"github.com/louisbranch/taskdeck/internal/account"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserResponse(user account.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: formatWireTime(user.CreatedAt),
		UpdatedAt: formatWireTime(user.UpdatedAt),
	}
}

func (h Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	result, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    result.Credential,
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
	})
}

func (h Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.Accounts.GetCurrent(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h Handler) getUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.Accounts.Get(r.Context(), userID, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	user, err := h.Accounts.ChangePassword(r.Context(), userID, caller, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Accounts.Delete(r.Context(), userID, caller); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
