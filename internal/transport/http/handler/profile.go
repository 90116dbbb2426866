package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profilehub/internal/app"
	"profilehub/internal/model"
	"profilehub/internal/transport/http/middleware"
	"profilehub/internal/transport/http/response"
)

type ProfileHandler struct {
	profileService *app.ProfileService
	logger         *slog.Logger
}

// ProfileRequest carries editable profile fields. Absent or null fields are left unchanged.
type ProfileRequest struct {
	Name            *string   `json:"name" example:"John Doe"`
	Location        *string   `json:"location" example:"Berlin"`
	FieldOfInterest *[]string `json:"fieldOfInterest"`
	TechStack       *[]string `json:"techStack"`
	Seeking         *[]string `json:"seeking"`
	Bio             *string   `json:"bio"`
	GithubURL       *string   `json:"githubURL" example:"https://github.com/user"`
	TwitterURL      *string   `json:"twitterURL"`
	WebsiteURL      *string   `json:"websiteURL"`
	LinkedinURL     *string   `json:"linkedinURL"`
}

func (r ProfileRequest) patch() model.ProfilePatch {
	return model.ProfilePatch{
		Name:            r.Name,
		Location:        r.Location,
		FieldOfInterest: r.FieldOfInterest,
		TechStack:       r.TechStack,
		Seeking:         r.Seeking,
		Bio:             r.Bio,
		GithubURL:       r.GithubURL,
		TwitterURL:      r.TwitterURL,
		WebsiteURL:      r.WebsiteURL,
		LinkedinURL:     r.LinkedinURL,
	}
}

var profileListFields = map[string]bool{
	"fieldOfInterest": true,
	"techStack":       true,
	"seeking":         true,
}

// bindProfile decodes a profile body and answers the request itself on failure.
// A value of the wrong JSON type is reported against its field.
func bindProfile(c *gin.Context, req *ProfileRequest) bool {
	err := bindOptionalJSON(c, req)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		label := strings.ToUpper(field[:1]) + field[1:]
		msg := label + " must be a string"
		if profileListFields[field] {
			msg = label + " must be a list of strings"
		}
		response.ValidationFailed(c, "Validation Error", map[string]string{field: msg})
		return false
	}
	invalidBody(c)
	return false
}

func NewProfileHandler(profileService *app.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// List godoc
// @Summary      List all profiles
// @Tags         profiles
// @Produce      json
// @Success      200 {array} model.User
// @Failure      500 {object} response.ErrorBody
// @Router       /getusers [get]
func (h *ProfileHandler) List(c *gin.Context) {
	users, err := h.profileService.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Search godoc
// @Summary      Search profiles
// @Description  Case-insensitive substring match on every supplied parameter; parameters are ANDed.
// @Tags         profiles
// @Produce      json
// @Param        name      query string false "Name contains"
// @Param        techStack query string false "Any tech stack entry contains"
// @Param        bio       query string false "Bio contains"
// @Success      200 {array} model.User
// @Failure      500 {object} response.ErrorBody
// @Router       /searchusers [get]
func (h *ProfileHandler) Search(c *gin.Context) {
	users, err := h.profileService.Search(c.Request.Context(), app.SearchInput{
		Name:      c.Query("name"),
		TechStack: c.Query("techStack"),
		Bio:       c.Query("bio"),
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Update godoc
// @Summary      Update the caller's profile with schema validation
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileRequest true "Profile fields"
// @Success      200 {object} model.User
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /updateusers [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req ProfileRequest
	if !bindProfile(c, &req) {
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), middleware.CurrentUser(c), req.patch())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// EditProfile godoc
// @Summary      Edit the caller's own profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path string true "User ID"
// @Param        request body ProfileRequest true "Profile fields"
// @Success      200 {object} response.MessageBody
// @Failure      400 {object} response.ErrorBody
// @Failure      401 {object} response.ErrorBody
// @Failure      403 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /user/editprofile/{userId} [put]
func (h *ProfileHandler) EditProfile(c *gin.Context) {
	var req ProfileRequest
	if !bindProfile(c, &req) {
		return
	}

	_, err := h.profileService.EditOwn(c.Request.Context(), middleware.CurrentUser(c), c.Param("userId"), req.patch())
	if err != nil {
		if errors.Is(err, app.ErrForbidden) {
			response.Error(c, http.StatusForbidden, "You are not authorized to edit this profile")
			return
		}
		writeServiceError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Profile updated successfully")
}

// DeleteProfile godoc
// @Summary      Delete the caller's own account
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "User ID"
// @Success      200 {object} response.MessageBody
// @Failure      401 {object} response.ErrorBody
// @Failure      403 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /user/deleteprofile/{userId} [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	err := h.profileService.DeleteOwn(c.Request.Context(), middleware.CurrentUser(c), c.Param("userId"))
	if err != nil {
		if errors.Is(err, app.ErrForbidden) {
			response.Error(c, http.StatusForbidden, "You are not authorized to delete this account")
			return
		}
		writeServiceError(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Account deleted successfully")
}
