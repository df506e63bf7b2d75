package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// DirectoryHandler exposes school and class listings plus the
// administrative mutations over them.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler creates a new handler.
func NewDirectoryHandler(svc *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// Schools godoc
// @Summary List schools
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *DirectoryHandler) Schools(c *gin.Context) {
	schools, err := h.service.Schools(c.Request.Context(), tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools)
}

// CreateSchool godoc
// @Summary Create school
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body dto.CreateSchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schools [post]
func (h *DirectoryHandler) CreateSchool(c *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}
	school, err := h.service.CreateSchool(c.Request.Context(), tokenFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// UpdateSchool godoc
// @Summary Update school
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path int true "School ID"
// @Param payload body dto.CreateSchoolRequest true "School payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schools/{id} [put]
func (h *DirectoryHandler) UpdateSchool(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school payload"))
		return
	}
	school, err := h.service.UpdateSchool(c.Request.Context(), tokenFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school)
}

// DeleteSchool godoc
// @Summary Delete school
// @Tags Directory
// @Produce json
// @Param id path int true "School ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schools/{id} [delete]
func (h *DirectoryHandler) DeleteSchool(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteSchool(c.Request.Context(), tokenFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SchoolClasses godoc
// @Summary List classes of a school
// @Tags Directory
// @Produce json
// @Param id path int true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{id}/classes [get]
func (h *DirectoryHandler) SchoolClasses(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.service.SchoolClasses(c.Request.Context(), tokenFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Classes godoc
// @Summary List classes
// @Tags Directory
// @Produce json
// @Param ano_letivo query int false "Filter by school year"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *DirectoryHandler) Classes(c *gin.Context) {
	classes, err := h.service.Classes(c.Request.Context(), tokenFromContext(c), queryInt(c, "ano_letivo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// CreateClass godoc
// @Summary Create class
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *DirectoryHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.service.CreateClass(c.Request.Context(), tokenFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// UpdateClass godoc
// @Summary Update class
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *DirectoryHandler) UpdateClass(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.service.UpdateClass(c.Request.Context(), tokenFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// DeleteClass godoc
// @Summary Delete class
// @Tags Directory
// @Produce json
// @Param id path int true "Class ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *DirectoryHandler) DeleteClass(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteClass(c.Request.Context(), tokenFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClassTeachers godoc
// @Summary List class teachers
// @Tags Directory
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/teachers [get]
func (h *DirectoryHandler) ClassTeachers(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teachers, err := h.service.ClassTeachers(c.Request.Context(), tokenFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// ClassGuardians godoc
// @Summary List class guardians
// @Tags Directory
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/guardians [get]
func (h *DirectoryHandler) ClassGuardians(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	guardians, err := h.service.ClassGuardians(c.Request.Context(), tokenFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, guardians)
}

// AssignTeacher godoc
// @Summary Assign teacher to class
// @Tags Directory
// @Produce json
// @Param id path int true "Class ID"
// @Param teacherId path int true "Teacher ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id}/teachers/{teacherId} [post]
func (h *DirectoryHandler) AssignTeacher(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID, err := pathID(c, "teacherId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.AssignTeacher(c.Request.Context(), tokenFromContext(c), classID, teacherID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignTeacher godoc
// @Summary Remove teacher from class
// @Tags Directory
// @Produce json
// @Param id path int true "Class ID"
// @Param teacherId path int true "Teacher ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id}/teachers/{teacherId} [delete]
func (h *DirectoryHandler) UnassignTeacher(c *gin.Context) {
	classID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teacherID, err := pathID(c, "teacherId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.UnassignTeacher(c.Request.Context(), tokenFromContext(c), classID, teacherID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Teachers godoc
// @Summary List teachers
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *DirectoryHandler) Teachers(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context(), tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}
