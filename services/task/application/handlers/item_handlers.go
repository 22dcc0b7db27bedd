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

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Description string  `json:"description" validate:"required,max=4000" example:"Water the plants"`
	Status      string  `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE" example:"TODO"`
	AssigneeID  *int64  `json:"assignee_id" example:"7"`
	TagIDs      []int64 `json:"tag_ids" example:"1,2"`
} // @name CreateItemRequest

// UpdateItemRequest is the request body for PUT /items/{id}. It replaces the
// full item state; a missing tag_ids removes every tag link.
type UpdateItemRequest struct {
	Description string  `json:"description" validate:"required,max=4000" example:"Water the plants"`
	Status      string  `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE" example:"IN_PROGRESS"`
	AssigneeID  *int64  `json:"assignee_id" example:"7"`
	TagIDs      []int64 `json:"tag_ids" example:"1,2"`
} // @name UpdateItemRequest

// PatchItemRequest is the request body for PATCH /items/{id}. Absent fields
// keep the stored value, null clears where the field is nullable.
type PatchItemRequest struct {
	Description patch.Field[string]            `json:"description"`
	Status      patch.Field[models.ItemStatus] `json:"status"`
	AssigneeID  patch.Field[int64]             `json:"assignee_id"`
	TagIDs      patch.Field[[]int64]           `json:"tag_ids"`
} // @name PatchItemRequest

// ItemResponse is the wire shape of an item with populated relations.
type ItemResponse struct {
	ID               int64           `json:"id" example:"42"`
	Version          int64           `json:"version" example:"3"`
	Description      string          `json:"description" example:"Water the plants"`
	Status           string          `json:"status" example:"TODO"`
	AssigneeID       *int64          `json:"assignee_id,omitempty" example:"7"`
	Assignee         *PersonResponse `json:"assignee,omitempty"`
	Tags             []TagResponse   `json:"tags"`
	CreatedDate      time.Time       `json:"created_date" example:"2024-01-15T10:30:00Z"`
	LastModifiedDate time.Time       `json:"last_modified_date" example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ItemHandler handles /items requests.
type ItemHandler struct {
	svc *appsvcs.Services
}

// NewItemHandler returns an ItemHandler backed by the given services.
func NewItemHandler(svc *appsvcs.Services) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List returns one page of items.
//
//	@Summary		List items
//	@Description	Returns a page of items ordered by last modification time
//	@Tags			items
//	@Produce		json
//	@Param			page	query		int	false	"Zero-based page index"
//	@Param			size	query		int	false	"Page size (default 100)"
//	@Success		200		{object}	PageResponse[ItemResponse]
//	@Router			/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	items, total, err := h.svc.Item.FindAllPaged(r.Context(), page)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	content := make([]ItemResponse, len(items))
	for i, item := range items {
		content[i] = toItemResponse(item)
	}
	httpx.JSON(w, http.StatusOK, PageResponse[ItemResponse]{
		Content:       content,
		TotalElements: total,
		Page:          page.Page,
		Size:          page.Size,
	})
}

// Get returns one item by id.
//
//	@Summary		Get item
//	@Description	Returns the item with its assignee and tags populated
//	@Tags			items
//	@Produce		json
//	@Param			id			path		int		true	"Item id"
//	@Param			If-Match	header		int		false	"Expected version"
//	@Success		200			{object}	ItemResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/items/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	item, err := h.svc.Item.GetByID(r.Context(), id, expected)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Create creates a new item.
//
//	@Summary		Create item
//	@Description	Creates an item; id and version are assigned by the server
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}
	status := models.ItemStatus(req.Status)
	if req.Status == "" {
		status = models.StatusTodo
	}
	item, err := h.svc.Item.Create(r.Context(), &models.Item{
		Description: req.Description,
		Status:      status,
		AssigneeID:  req.AssigneeID,
		Tags:        tagRefs(req.TagIDs),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

// Update replaces an item.
//
//	@Summary		Update item
//	@Description	Replaces the item state and reconciles its tag links
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Item id"
//	@Param			If-Match	header		int					false	"Expected version"
//	@Param			request		body		UpdateItemRequest	true	"Item update request"
//	@Success		200			{object}	ItemResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}
	item, err := h.svc.Item.Update(r.Context(), id, expected, appsvcs.ItemUpdate{
		Description: req.Description,
		Status:      models.ItemStatus(req.Status),
		AssigneeID:  req.AssigneeID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Patch partially updates an item.
//
//	@Summary		Patch item
//	@Description	Merges the provided fields onto the stored item; a no-op patch does not bump the version
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Item id"
//	@Param			If-Match	header		int					false	"Expected version"
//	@Param			request		body		PatchItemRequest	true	"Item patch request"
//	@Success		200			{object}	ItemResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/items/{id} [patch]
func (h *ItemHandler) Patch(w http.ResponseWriter, r *http.Request) {
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
	var req PatchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	item, err := h.svc.Item.Patch(r.Context(), id, expected, appsvcs.ItemPatch{
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes an item.
//
//	@Summary		Delete item
//	@Description	Deletes the item and its tag links
//	@Tags			items
//	@Param			id			path	int	true	"Item id"
//	@Param			If-Match	header	int	false	"Expected version"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Item.Delete(r.Context(), id, expected); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toItemResponse(item *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Version:          item.Version,
		Description:      item.Description,
		Status:           string(item.Status),
		AssigneeID:       item.AssigneeID,
		Tags:             []TagResponse{},
		CreatedDate:      item.CreatedDate,
		LastModifiedDate: item.LastModifiedDate,
	}
	if item.Assignee != nil {
		r := toPersonResponse(item.Assignee)
		resp.Assignee = &r
	}
	for _, tag := range item.Tags {
		t := tag
		resp.Tags = append(resp.Tags, toTagResponse(&t))
	}
	return resp
}

func tagRefs(ids []int64) []models.Tag {
	if len(ids) == 0 {
		return nil
	}
	tags := make([]models.Tag, len(ids))
	for i, id := range ids {
		tags[i] = models.Tag{ID: id}
	}
	return tags
}
