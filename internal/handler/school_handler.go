package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/response"
	"github.com/stemsi/school-directory/internal/service"
	"github.com/stemsi/school-directory/internal/validator"
)

// HeaderIdempotencyKey lets a client make POST /add-school safe to repeat.
const HeaderIdempotencyKey = "Idempotency-Key"

// SchoolHandler handles the school directory endpoints.
type SchoolHandler struct {
	schoolService *service.SchoolService
}

// NewSchoolHandler creates a new SchoolHandler.
func NewSchoolHandler(schoolService *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolService: schoolService}
}

// AddSchool godoc
// POST /add-school
// Registers a school from a multipart form with six text fields and one image.
func (h *SchoolHandler) AddSchool(c *gin.Context) {
	var req model.CreateSchoolRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.schoolService.Create(c.Request.Context(), &req, c.GetHeader(HeaderIdempotencyKey))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, service.ErrRequestInFlight):
			response.Fail(c, http.StatusConflict, response.ErrRequestInFlight)
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("add school failed")
			response.FailWithMessage(c, http.StatusInternalServerError, response.ErrInternal, err.Error())
		}
		return
	}

	response.Success(c, http.StatusOK, model.CreateSchoolResponse{Message: "School Added", ID: result.ID})
}

// GetSchools godoc
// GET /get-schools
// Lists every school in store order.
func (h *SchoolHandler) GetSchools(c *gin.Context) {
	schools, err := h.schoolService.List(c.Request.Context())
	if err != nil {
		response.FailWithMessage(c, http.StatusInternalServerError, response.ErrInternal, err.Error())
		return
	}

	if schools == nil {
		schools = []model.School{}
	}

	response.Success(c, http.StatusOK, schools)
}

// DeleteSchool godoc
// DELETE /delete-school/:id
// Deletes one school row. Its image file is left in place.
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A malformed id cannot match any row.
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if err := h.schoolService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.FailWithMessage(c, http.StatusInternalServerError, response.ErrInternal, err.Error())
		return
	}

	response.Success(c, http.StatusOK, model.MessageResponse{Message: "School deleted successfully"})
}
