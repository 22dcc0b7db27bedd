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

// CreatePersonRequest is the request body for POST /persons.
type CreatePersonRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100" example:"Ada"`
	LastName  string `json:"last_name" validate:"required,max=100" example:"Lovelace"`
} // @name CreatePersonRequest

// UpdatePersonRequest is the request body for PUT /persons/{id}.
type UpdatePersonRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100" example:"Ada"`
	LastName  string `json:"last_name" validate:"required,max=100" example:"Lovelace"`
} // @name UpdatePersonRequest

// PatchPersonRequest is the request body for PATCH /persons/{id}.
type PatchPersonRequest struct {
	FirstName patch.Field[string] `json:"first_name"`
	LastName  patch.Field[string] `json:"last_name"`
} // @name PatchPersonRequest

// PersonResponse is the wire shape of a person.
type PersonResponse struct {
	ID               int64     `json:"id" example:"7"`
	Version          int64     `json:"version" example:"1"`
	FirstName        string    `json:"first_name" example:"Ada"`
	LastName         string    `json:"last_name" example:"Lovelace"`
	CreatedDate      time.Time `json:"created_date" example:"2024-01-15T10:30:00Z"`
	LastModifiedDate time.Time `json:"last_modified_date" example:"2024-01-15T10:30:00Z"`
} // @name PersonResponse

// PersonHandler handles /persons requests.
type PersonHandler struct {
	svc *appsvcs.Services
}

// NewPersonHandler returns a PersonHandler backed by the given services.
func NewPersonHandler(svc *appsvcs.Services) *PersonHandler {
	return &PersonHandler{svc: svc}
}

// List returns one page of persons.
//
//	@Summary	List persons
//	@Tags		persons
//	@Produce	json
//	@Param		page	query		int	false	"Zero-based page index"
//	@Param		size	query		int	false	"Page size (default 100)"
//	@Success	200		{object}	PageResponse[PersonResponse]
//	@Router		/persons [get]
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageRequest(r)
	persons, total, err := h.svc.Person.FindAllPaged(r.Context(), page)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	content := make([]PersonResponse, len(persons))
	for i, person := range persons {
		content[i] = toPersonResponse(person)
	}
	httpx.JSON(w, http.StatusOK, PageResponse[PersonResponse]{
		Content:       content,
		TotalElements: total,
		Page:          page.Page,
		Size:          page.Size,
	})
}

// Get returns one person by id.
//
//	@Summary	Get person
//	@Tags		persons
//	@Produce	json
//	@Param		id			path		int	true	"Person id"
//	@Param		If-Match	header		int	false	"Expected version"
//	@Success	200			{object}	PersonResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/persons/{id} [get]
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	person, err := h.svc.Person.GetByID(r.Context(), id, expected)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPersonResponse(person))
}

// Create creates a new person.
//
//	@Summary	Create person
//	@Tags		persons
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreatePersonRequest	true	"Person creation request"
//	@Success	201		{object}	PersonResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/persons [post]
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreatePersonRequest](w, r)
	if !ok {
		return
	}
	person, err := h.svc.Person.Create(r.Context(), &models.Person{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPersonResponse(person))
}

// Update replaces a person.
//
//	@Summary	Update person
//	@Tags		persons
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int					true	"Person id"
//	@Param		If-Match	header		int					false	"Expected version"
//	@Param		request		body		UpdatePersonRequest	true	"Person update request"
//	@Success	200			{object}	PersonResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/persons/{id} [put]
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	req, ok := pkgvalidator.ValidateRequest[UpdatePersonRequest](w, r)
	if !ok {
		return
	}
	person, err := h.svc.Person.Update(r.Context(), id, expected, appsvcs.PersonUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPersonResponse(person))
}

// Patch partially updates a person.
//
//	@Summary	Patch person
//	@Tags		persons
//	@Accept		json
//	@Produce	json
//	@Param		id			path		int					true	"Person id"
//	@Param		If-Match	header		int					false	"Expected version"
//	@Param		request		body		PatchPersonRequest	true	"Person patch request"
//	@Success	200			{object}	PersonResponse
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Router		/persons/{id} [patch]
func (h *PersonHandler) Patch(w http.ResponseWriter, r *http.Request) {
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
	var req PatchPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	person, err := h.svc.Person.Patch(r.Context(), id, expected, appsvcs.PersonPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPersonResponse(person))
}

// Delete removes a person, their assigned items, and those items' tag links.
//
//	@Summary	Delete person
//	@Tags		persons
//	@Param		id			path	int	true	"Person id"
//	@Param		If-Match	header	int	false	"Expected version"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/persons/{id} [delete]
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Person.Delete(r.Context(), id, expected); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toPersonResponse(person *models.Person) PersonResponse {
	return PersonResponse{
		ID:               person.ID,
		Version:          person.Version,
		FirstName:        person.FirstName,
		LastName:         person.LastName,
		CreatedDate:      person.CreatedDate,
		LastModifiedDate: person.LastModifiedDate,
	}
}
