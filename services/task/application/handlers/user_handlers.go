package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ghuser/taskmanager/pkg/errhttp"
	"github.com/ghuser/taskmanager/pkg/httpx"
	"github.com/ghuser/taskmanager/pkg/patch"
	pkgvalidator "github.com/ghuser/taskmanager/pkg/validator"
	appsvcs "github.com/ghuser/taskmanager/services/task/application/services"
	"github.com/ghuser/taskmanager/services/task/domain/models"
)

// CreateUserRequest is the request body for POST /users. A blank user_id is
// replaced with a fresh uuid.
type CreateUserRequest struct {
	UserID    string `json:"user_id" validate:"omitempty,max=36" example:"123e4567-e89b-12d3-a456-426614174000"`
	Email     string `json:"email" validate:"required,email,max=256" example:"ada@example.com"`
	FirstName string `json:"first_name" validate:"required,max=100" example:"Ada"`
	LastName  string `json:"last_name" validate:"required,max=100" example:"Lovelace"`
} // @name CreateUserRequest

// UpdateUserRequest is the request body for PUT /users/{id}. The external
// user_id is immutable and not part of it.
type UpdateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=256" example:"ada@example.com"`
	FirstName string `json:"first_name" validate:"required,max=100" example:"Ada"`
	LastName  string `json:"last_name" validate:"required,max=100" example:"Lovelace"`
} // @name UpdateUserRequest

// PatchUserRequest is the request body for PATCH /users/{id}.
type PatchUserRequest struct {
	Email     patch.Field[string] `json:"email"`
	FirstName patch.Field[string] `json:"first_name"`
	LastName  patch.Field[string] `json:"last_name"`
} // @name PatchUserRequest

// UserResponse is the wire shape of a user.
type UserResponse struct {
	ID               int64     `json:"id" example:"11"`
	Version          int64     `json:"version" example:"0"`
	UserID           string    `json:"user_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Email            string    `json:"email" example:"ada@example.com"`
	FirstName        string    `json:"first_name" example:"Ada"`
	LastName         string    `json:"last_name" example:"Lovelace"`
	CreatedDate      time.Time `json:"created_date" example:"2024-01-15T10:30:00Z"`
	LastModifiedDate time.Time `json:"last_modified_date" example:"2024-01-15T10:30:00Z"`
} // @name UserResponse

// UserHandler handles /users requests.
type UserHandler struct {
	svc *appsvcs.Services
}

// NewUserHandler returns a UserHandler backed by the given services.
func NewUserHandler(svc *appsvcs.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns one page of users.
//
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Param		page	query		int	false	"Zero-based page index"
//	@Param		size	query		int	false	"Page size (default 100)"
//	@Success	200		{object}	PageResponse[UserResponse]
//	@Router		/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	users, total, err := h.svc.User.FindAllPaged(r.Context(), page)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	content := make([]UserResponse, len(users))
	for i, user := range users {
		content[i] = toUserResponse(user)
	}
	httpx.JSON(w, http.StatusOK, PageResponse[UserResponse]{
		Content:       content,
		TotalElements: total,
		Page:          page.Page,
		Size:          page.Size,
	})
}

// Get returns one user by id.
//
//	@Summary	Get user
//	@Tags		users
//	@Produce	json
//	@Param		id			path		int	true	"User id"
//	@Param		If-Match	header		int	false	"Expected version"
//	@Success	200			{object}	UserResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	user, err := h.svc.User.GetByID(r.Context(), id, expected)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// Create creates a new user.
//
//	@Summary	Create user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateUserRequest	true	"User creation request"
//	@Success	201		{object}	UserResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateUserRequest](w, r)
	if !ok {
		return
	}
	user, err := h.svc.User.Create(r.Context(), &models.User{
		UserID:    req.UserID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

// Update replaces a user's mutable fields.
//
//	@Summary	Update user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int					true	"User id"
//	@Param		If-Match	header		int					false	"Expected version"
//	@Param		request		body		UpdateUserRequest	true	"User update request"
//	@Success	200			{object}	UserResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateUserRequest](w, r)
	if !ok {
		return
	}
	user, err := h.svc.User.Update(r.Context(), id, expected, appsvcs.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// Patch partially updates a user.
//
//	@Summary	Patch user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int					true	"User id"
//	@Param		If-Match	header		int					false	"Expected version"
//	@Param		request		body		PatchUserRequest	true	"User patch request"
//	@Success	200			{object}	UserResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/users/{id} [patch]
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	var req PatchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	user, err := h.svc.User.Patch(r.Context(), id, expected, appsvcs.UserPatch{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// Delete removes a user.
//
//	@Summary	Delete user
//	@Tags		users
//	@Param		id			path	int	true	"User id"
//	@Param		If-Match	header	int	false	"Expected version"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.User.Delete(r.Context(), id, expected); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Version:          user.Version,
		UserID:           user.UserID,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		CreatedDate:      user.CreatedDate,
		LastModifiedDate: user.LastModifiedDate,
	}
}
