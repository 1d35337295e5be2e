package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userBody(user *model.User) gin.H {
	return gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"phone":   user.Phone,
		"address": user.Address,
		"role":    user.Role,
	}
}

func authBody(result *service.AuthResult) gin.H {
	return gin.H{
		"user":         userBody(result.User),
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   result.ExpiresAt,
	}
}

// Register creates an account and signs the user in
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Register(service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, authBody(result))
}

// Login exchanges credentials for an access token
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, authBody(result))
}

// Logout revokes the token used for this request
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the signed-in user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUser(userID)
	if err != nil {
		respondError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userBody(user)})
}
