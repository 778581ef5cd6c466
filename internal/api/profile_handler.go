package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the authenticated user's own account.
type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMe godoc
// @Summary Get the authenticated user's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	user, err := h.profileService.GetProfile(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Description Omitted fields are left unchanged. licenseId is accepted from trainers only.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body domain.ProfilePatch true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /me [patch]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := h.profileService.UpdateProfile(c.Request.Context(), actor, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetMyTrainers godoc
// @Summary List the trainers linked to the authenticated student
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /me/trainers [get]
func (h *ProfileHandler) GetMyTrainers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	trainers, err := h.profileService.MyTrainers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(trainers))
}
