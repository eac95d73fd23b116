package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qbic/datamanager/internal/application/identity"
	"github.com/qbic/datamanager/internal/infrastructure/auth"
	"github.com/qbic/datamanager/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication and account requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with user name or email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Get a new token pair using a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=TokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	pair, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTokenResponse(pair))
}

// Logout godoc
// @Summary      User logout
// @Description  Revoke the access token of the request
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Register godoc
// @Summary      Register an account
// @Description  Create a pending account and send a confirmation mail
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account"
// @Success      201 {object} dto.Response{data=identity.UserInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// ConfirmEmail godoc
// @Summary      Confirm email address
// @Description  Activate an account with the token from the confirmation mail
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        userId path string true "User ID" format(uuid)
// @Param        request body ConfirmEmailRequest true "Confirmation token"
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/confirm/{userId} [post]
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	userID, ok := h.pathUUID(c, "userId")
	if !ok {
		return
	}
	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.authService.ConfirmEmail(c.Request.Context(), userID, req.Token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestPasswordReset godoc
// @Summary      Request password reset
// @Description  Send a reset mail. Unknown addresses are answered the same way.
// @Tags         auth
// @Accept       json
// @Param        request body PasswordResetRequest true "Email"
// @Success      202
// @Router       /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, nil)
}

// ResetPassword godoc
// @Summary      Reset password
// @Description  Set a new password with the token from the reset mail
// @Tags         auth
// @Accept       json
// @Param        request body PasswordResetConfirmRequest true "New password"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/password-reset/confirm [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.UserID, req.Token, req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Param        request body ChangePasswordRequest true "Passwords"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/me/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserInfo}
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// CreateToken godoc
// @Summary      Create personal access token
// @Description  The raw token is only returned once
// @Tags         tokens
// @Accept       json
// @Produce      json
// @Param        request body CreateTokenRequest true "Token"
// @Success      201 {object} dto.Response{data=identity.CreatedToken}
// @Security     BearerAuth
// @Router       /users/me/tokens [post]
func (h *AuthHandler) CreateToken(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	// zero selects the configured validity
	validFor := time.Duration(req.ValidDays) * 24 * time.Hour
	token, err := h.authService.CreateToken(c.Request.Context(), userID, req.Description, validFor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, token)
}

// ListTokens godoc
// @Summary      List personal access tokens
// @Tags         tokens
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.TokenInfo}
// @Security     BearerAuth
// @Router       /users/me/tokens [get]
func (h *AuthHandler) ListTokens(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	tokens, err := h.authService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// DeleteToken godoc
// @Summary      Delete personal access token
// @Tags         tokens
// @Param        tokenId path string true "Token ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/me/tokens/{tokenId} [delete]
func (h *AuthHandler) DeleteToken(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	tokenID, ok := h.pathUUID(c, "tokenId")
	if !ok {
		return
	}
	if err := h.authService.DeleteToken(c.Request.Context(), userID, tokenID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
