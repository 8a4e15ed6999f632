package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/fueldelivery/internal/domain/model"
	"github.com/polkiloo/fueldelivery/internal/server/http/dto"
	"github.com/polkiloo/fueldelivery/internal/usecase"
)

// UserHandler serves account management endpoints.
type UserHandler struct {
	facade UserFacade
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(facade UserFacade) *UserHandler {
	return &UserHandler{facade: facade}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.facade.CreateUser(c.Request.Context(), CurrentActor(c), usecase.CreateUserInput{
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		Role:     model.Role(req.Role),
	})
	h.reply(c, http.StatusCreated, "user created", user, err)
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	var filter model.UserFilter
	if r := c.Query("role"); r != "" {
		role := model.Role(r)
		filter.Role = &role
	}
	var ok bool
	if filter.Active, ok = queryBool(c, "isActive"); !ok {
		return
	}
	filter.Search = c.Query("search")
	page := queryPage(c)

	users, total, err := h.facade.Users(c.Request.Context(), CurrentActor(c), filter, page)
	if err != nil {
		fail(c, err)
		return
	}
	payload := paginated(page, total)
	payload["users"] = dto.NewUserResponses(users)
	respond(c, http.StatusOK, "", payload)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.facade.User(c.Request.Context(), CurrentActor(c), id)
	h.reply(c, http.StatusOK, "", user, err)
}

// Update handles PUT /api/users/:id. Only the display name is editable.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.facade.UpdateProfile(c.Request.Context(), CurrentActor(c), id, req.Name)
	h.reply(c, http.StatusOK, "user updated", user, err)
}

// ChangeRole handles PATCH /api/users/:id/role.
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.facade.ChangeRole(c.Request.Context(), CurrentActor(c), id, model.Role(req.Role))
	h.reply(c, http.StatusOK, "role updated", user, err)
}

// ManageDriver handles PATCH /api/users/drivers/manage.
func (h *UserHandler) ManageDriver(c *gin.Context) {
	var req dto.ManageDriverRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.facade.ManageDriver(c.Request.Context(), CurrentActor(c), req.DriverID, req.Action, req.Reason)
	h.reply(c, http.StatusOK, "driver status updated", user, err)
}

// ReviewProfile handles PATCH /api/users/:id/approve-profile.
func (h *UserHandler) ReviewProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	approve := req.Status == "approved"
	user, err := h.facade.ReviewProfile(c.Request.Context(), CurrentActor(c), id, approve, req.RejectionReason)
	message := "profile rejected"
	if approve {
		message = "profile approved"
	}
	h.reply(c, http.StatusOK, message, user, err)
}

// Delete handles DELETE /api/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteUser(c.Request.Context(), CurrentActor(c), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "user deleted", nil)
}

// Stats handles GET /api/users/stats.
func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.facade.UserStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *UserHandler) reply(c *gin.Context, status int, message string, user *model.User, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, status, message, gin.H{"user": dto.NewUserResponse(*user)})
}
