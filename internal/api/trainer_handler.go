// internal/api/trainer_handler.go
package api

import (
	"alcyxob/fitness-coach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService service.TrainerService
	workoutService service.WorkoutService
	now            func() time.Time
}

func NewTrainerHandler(trainerService service.TrainerService, workoutService service.WorkoutService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		workoutService: workoutService,
		now:            time.Now,
	}
}

// --- DTOs for Student Management ---
type CreateStudentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LinkResponse struct {
	StudentID string `json:"studentId"`
	Created   bool   `json:"created"`
}

type StudentMatchResponse struct {
	Student     UserResponse `json:"student"`
	IsLinked    bool         `json:"isLinked"`
	HasTrainers bool         `json:"hasTrainers"`
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType"`
}

// --- Handler Methods for Student Management ---

// CreateStudent godoc
// @Summary Create a student account linked to the trainer
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student body CreateStudentRequest true "Student account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainer/students [post]
func (h *TrainerHandler) CreateStudent(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.trainerService.CreateStudent(c.Request.Context(), actor, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(student))
}

// GetStudents godoc
// @Summary Get the trainer's linked students
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /trainer/students [get]
func (h *TrainerHandler) GetStudents(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	students, err := h.trainerService.ListStudents(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(students))
}

// SearchStudents godoc
// @Summary Search student accounts by name or email
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param q query string true "At least two characters"
// @Success 200 {array} StudentMatchResponse
// @Router /trainer/students/search [get]
func (h *TrainerHandler) SearchStudents(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	matches, err := h.trainerService.SearchStudents(c.Request.Context(), actor, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]StudentMatchResponse, len(matches))
	for i := range matches {
		resp[i] = StudentMatchResponse{
			Student:     MapUserToResponse(&matches[i].Student),
			IsLinked:    matches[i].IsLinked,
			HasTrainers: matches[i].HasTrainers,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// LinkStudent godoc
// @Summary Link an existing student to the trainer (idempotent)
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} LinkResponse "Already linked"
// @Success 201 {object} LinkResponse "Linked"
// @Failure 404 {object} gin.H "Student not found"
// @Router /trainer/students/{studentId}/link [put]
func (h *TrainerHandler) LinkStudent(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	created, err := h.trainerService.LinkStudent(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, LinkResponse{StudentID: studentID.Hex(), Created: created})
}

// UnlinkStudent godoc
// @Summary Remove a student from the trainer's roster
// @Tags Trainer
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 204 "Unlinked"
// @Router /trainer/students/{studentId}/link [delete]
func (h *TrainerHandler) UnlinkStudent(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if err := h.trainerService.UnlinkStudent(c.Request.Context(), actor, studentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Overview ---

// GetDashboard godoc
// @Summary Roster counters for today
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Router /trainer/dashboard [get]
func (h *TrainerHandler) GetDashboard(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	stats, err := h.trainerService.Dashboard(c.Request.Context(), actor, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTimeline godoc
// @Summary Today's workout completions by linked students
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.TimelineEntry
// @Router /trainer/timeline [get]
func (h *TrainerHandler) GetTimeline(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	entries, err := h.trainerService.Timeline(c.Request.Context(), actor, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// --- Media ---

// RequestMediaUploadURL godoc
// @Summary Get a presigned URL for uploading exercise media
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param request body RequestUploadURLRequest true "Media content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 503 {object} gin.H "Media storage not configured"
// @Router /trainer/students/{studentId}/media [post]
func (h *TrainerHandler) RequestMediaUploadURL(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	var req RequestUploadURLRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.workoutService.MediaUploadURL(c.Request.Context(), actor, studentID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteMedia godoc
// @Summary Delete uploaded exercise media
// @Tags Trainer
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param key query string true "Object key"
// @Success 204 "Deleted"
// @Router /trainer/students/{studentId}/media [delete]
func (h *TrainerHandler) DeleteMedia(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	if err := h.workoutService.DeleteMedia(c.Request.Context(), actor, studentID, c.Query("key")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
