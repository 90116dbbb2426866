package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"profilehub/internal/app"
	"profilehub/internal/model"
	"profilehub/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	logger      *slog.Logger
}

type RegisterRequest struct {
	Name     string `json:"name" example:"John Doe"`
	Email    string `json:"email" example:"john@example.com"`
	Password string `json:"password" example:"pw123"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"john@example.com"`
	Password string `json:"password" example:"pw123"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
}

func NewAuthHandler(authService *app.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register godoc
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		invalidBody(c)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    result.User,
		Token:   result.Token,
	})
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} response.ErrorBody
// @Failure      500 {object} response.ErrorBody
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		invalidBody(c)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    result.User,
		Token:   result.Token,
	})
}

// Logout godoc
// @Summary      Log out (the client discards its token)
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.MessageBody
// @Failure      401 {object} response.ErrorBody
// @Router       /user/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Message(c, http.StatusOK, "Logout successful")
}

// bindOptionalJSON treats an empty body as an empty request so missing
// fields are reported by the service rather than as a decode error.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
