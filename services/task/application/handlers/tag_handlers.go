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

// CreateTagRequest is the request body for POST /tags.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"garden"`
} // @name CreateTagRequest

// UpdateTagRequest is the request body for PUT /tags/{id}.
type UpdateTagRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"garden"`
} // @name UpdateTagRequest

// PatchTagRequest is the request body for PATCH /tags/{id}.
type PatchTagRequest struct {
	Name patch.Field[string] `json:"name"`
} // @name PatchTagRequest

// TagResponse is the wire shape of a tag.
type TagResponse struct {
	ID               int64     `json:"id" example:"3"`
	Version          int64     `json:"version" example:"0"`
	Name             string    `json:"name" example:"garden"`
	CreatedDate      time.Time `json:"created_date" example:"2024-01-15T10:30:00Z"`
	LastModifiedDate time.Time `json:"last_modified_date" example:"2024-01-15T10:30:00Z"`
} // @name TagResponse

// TagHandler handles /tags requests.
type TagHandler struct {
	svc *appsvcs.Services
}

// NewTagHandler returns a TagHandler backed by the given services.
func NewTagHandler(svc *appsvcs.Services) *TagHandler {
	return &TagHandler{svc: svc}
}

// List returns one page of tags.
//
//	@Summary	List tags
//	@Tags		tags
//	@Produce	json
//	@Param		page	query		int	false	"Zero-based page index"
//	@Param		size	query		int	false	"Page size (default 100)"
//	@Success	200		{object}	PageResponse[TagResponse]
//	@Router		/tags [get]
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	tags, total, err := h.svc.Tag.FindAllPaged(r.Context(), page)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	content := make([]TagResponse, len(tags))
	for i, tag := range tags {
		content[i] = toTagResponse(tag)
	}
	httpx.JSON(w, http.StatusOK, PageResponse[TagResponse]{
		Content:       content,
		TotalElements: total,
		Page:          page.Page,
		Size:          page.Size,
	})
}

// Get returns one tag by id.
//
//	@Summary	Get tag
//	@Tags		tags
//	@Produce	json
//	@Param		id			path		int	true	"Tag id"
//	@Param		If-Match	header		int	false	"Expected version"
//	@Success	200			{object}	TagResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/tags/{id} [get]
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	tag, err := h.svc.Tag.GetByID(r.Context(), id, expected)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTagResponse(tag))
}

// Create creates a new tag.
//
//	@Summary	Create tag
//	@Tags		tags
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateTagRequest	true	"Tag creation request"
//	@Success	201		{object}	TagResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/tags [post]
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateTagRequest](w, r)
	if !ok {
		return
	}
	tag, err := h.svc.Tag.Create(r.Context(), &models.Tag{Name: req.Name})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTagResponse(tag))
}

// Update replaces a tag.
//
//	@Summary	Update tag
//	@Tags		tags
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int					true	"Tag id"
//	@Param		If-Match	header		int					false	"Expected version"
//	@Param		request		body		UpdateTagRequest	true	"Tag update request"
//	@Success	200			{object}	TagResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/tags/{id} [put]
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	req, ok := pkgvalidator.ValidateRequest[UpdateTagRequest](w, r)
	if !ok {
		return
	}
	tag, err := h.svc.Tag.Update(r.Context(), id, expected, req.Name)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTagResponse(tag))
}

// Patch partially updates a tag.
//
//	@Summary	Patch tag
//	@Tags		tags
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int				true	"Tag id"
//	@Param		If-Match	header		int				false	"Expected version"
//	@Param		request		body		PatchTagRequest	true	"Tag patch request"
//	@Success	200			{object}	TagResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/tags/{id} [patch]
func (h *TagHandler) Patch(w http.ResponseWriter, r *http.Request) {
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
	var req PatchTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	tag, err := h.svc.Tag.Patch(r.Context(), id, expected, appsvcs.TagPatch{Name: req.Name})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTagResponse(tag))
}

// Delete removes a tag and unlinks it from every item.
//
//	@Summary	Delete tag
//	@Tags		tags
//	@Param		id			path	int	true	"Tag id"
//	@Param		If-Match	header	int	false	"Expected version"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/tags/{id} [delete]
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Tag.Delete(r.Context(), id, expected); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toTagResponse(tag *models.Tag) TagResponse {
	return TagResponse{
		ID:               tag.ID,
		Version:          tag.Version,
		Name:             tag.Name,
		CreatedDate:      tag.CreatedDate,
		LastModifiedDate: tag.LastModifiedDate,
	}
}
