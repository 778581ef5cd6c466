package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StudentHandler serves the records of one student. Every route is guarded
// per actor, so trainers and the student share it.
type StudentHandler struct {
	profileService    service.ProfileService
	assessmentService service.AssessmentService
	workoutService    service.WorkoutService
}

func NewStudentHandler(
	profileService service.ProfileService,
	assessmentService service.AssessmentService,
	workoutService service.WorkoutService,
) *StudentHandler {
	return &StudentHandler{
		profileService:    profileService,
		assessmentService: assessmentService,
		workoutService:    workoutService,
	}
}

type WorkoutRequest struct {
	Title     string            `json:"title"`
	Exercises []domain.Exercise `json:"exercises"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}

// GetProfile godoc
// @Summary Get a student's profile
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} UserResponse
// @Router /students/{studentId}/profile [get]
func (h *StudentHandler) GetProfile(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	user, err := h.profileService.GetProfile(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// === Assessments ===

// CreateAssessment godoc
// @Summary Record a seven-site skinfold assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param assessment body service.AssessmentInput true "Measurements"
// @Success 201 {object} domain.Assessment
// @Failure 400 {object} gin.H "Validation error"
// @Router /students/{studentId}/assessments [post]
func (h *StudentHandler) CreateAssessment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	var req service.AssessmentInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assessmentService.CreateAssessment(c.Request.Context(), actor, studentID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GetAssessments godoc
// @Summary List a student's assessments, newest first
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} domain.Assessment
// @Router /students/{studentId}/assessments [get]
func (h *StudentHandler) GetAssessments(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	list, err := h.assessmentService.ListAssessments(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetLatestComposition godoc
// @Summary Latest assessment with fat and lean mass
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} service.Composition
// @Failure 404 {object} gin.H "No assessment yet"
// @Router /students/{studentId}/assessments/latest [get]
func (h *StudentHandler) GetLatestComposition(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	comp, err := h.assessmentService.LatestComposition(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// GetHistory godoc
// @Summary Weight, body fat and lean mass over time
// @Tags Assessments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} history.Point
// @Router /students/{studentId}/history [get]
func (h *StudentHandler) GetHistory(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	points, err := h.assessmentService.History(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// === Workouts ===

// UpsertWorkout godoc
// @Summary Create or replace a workout plan
// @Description A title naming a weekday replaces that weekday's plan.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param workout body WorkoutRequest true "Plan"
// @Success 200 {object} service.WorkoutDetails
// @Router /students/{studentId}/workouts [put]
func (h *StudentHandler) UpsertWorkout(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	var req WorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	plan, err := h.workoutService.UpsertWorkout(c.Request.Context(), actor, studentID, req.Title, req.Exercises)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetWorkouts godoc
// @Summary List plans in weekday order
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} domain.WorkoutPlan
// @Router /students/{studentId}/workouts [get]
func (h *StudentHandler) GetWorkouts(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	plans, err := h.workoutService.ListWorkouts(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetSchedule godoc
// @Summary The seven-day schedule, Monday first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} service.ScheduleDay
// @Router /students/{studentId}/schedule [get]
func (h *StudentHandler) GetSchedule(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	days, err := h.workoutService.WeeklySchedule(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// GetCompletions godoc
// @Summary Workout completion logs, newest first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {array} domain.WorkoutLog
// @Router /students/{studentId}/completions [get]
func (h *StudentHandler) GetCompletions(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	logs, err := h.workoutService.ListCompletions(c.Request.Context(), actor, studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetMediaDownloadURL godoc
// @Summary Presigned URL for viewing exercise media
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param key query string true "Object key"
// @Success 200 {object} MediaURLResponse
// @Failure 503 {object} gin.H "Media storage not configured"
// @Router /students/{studentId}/media [get]
func (h *StudentHandler) GetMediaDownloadURL(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	url, err := h.workoutService.MediaDownloadURL(c.Request.Context(), actor, studentID, c.Query("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MediaURLResponse{URL: url})
}
