package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/server/http/dto"
	"github.com/polkiloo/fueldelivery/internal/server/http/middleware"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// AuthHandler processes registration and login.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.facade.Register(c.Request.Context(), usecase.RegisterInput{
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		fail(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, http.StatusCreated, "registered", gin.H{"token": token, "user": dto.NewUserResponse(*user)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.facade.Authenticate(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	respond(c, http.StatusOK, "logged in", gin.H{"token": token, "user": dto.NewUserResponse(*user)})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.facade.Me(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"user": dto.NewUserResponse(*user)})
}
