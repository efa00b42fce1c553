package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// AccountService creates accounts and resets passwords.
type AccountService interface {
	CreateUser(in auth.NewUser) (*entities.User, error)
	SetPassword(userID uint, newPassword string) error
}

// UsersController manages administrator and staff accounts.
type UsersController struct {
	accounts AccountService
	store    UserStore
	recorder ActivityRecorder
}

func NewUsersController(accounts AccountService, store UserStore, recorder ActivityRecorder) *UsersController {
	return &UsersController{accounts: accounts, store: store, recorder: recorder}
}

func (uc *UsersController) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	admin := api.Group("/admin/users", g.Admin)
	admin.GET("", uc.ListUsers)
	admin.POST("", uc.CreateUser)
	admin.GET("/:id", uc.GetUser)
	admin.PATCH("/:id", uc.UpdateUser)
	admin.DELETE("/:id", uc.DeleteUser)
}

type CreateUserRequest struct {
	Username string            `json:"username" binding:"required"`
	Email    string            `json:"email" binding:"required,email"`
	FullName string            `json:"full_name" binding:"omitempty,max=200"`
	Password string            `json:"password" binding:"required"`
	Role     entities.UserRole `json:"role" binding:"omitempty,userrole"`
}

type UpdateUserRequest struct {
	Email    *string            `json:"email" binding:"omitempty,email"`
	FullName *string            `json:"full_name" binding:"omitempty,max=200"`
	Role     *entities.UserRole `json:"role" binding:"omitempty,userrole"`
	Active   *bool              `json:"active"`
	Password *string            `json:"password"`
}

func (uc *UsersController) ListUsers(c *gin.Context) {
	list, err := uc.store.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "count": len(list)})
}

func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.store.GetUserByID(id)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UsersController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.accounts.CreateUser(auth.NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondError(c, http.StatusConflict, CodeDuplicateEntry, err.Error())
		return
	case auth.IsUserInputError(err):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "create user")
		return
	}
	recordActivity(c, uc.recorder, activity.Entry{
		Type:        entities.ActivityUsers,
		Action:      "user_create",
		Description: fmt.Sprintf("Created %s account %q", user.Role, user.Username),
		EntityType:  "user",
		EntityID:    idPtr(user.ID),
	})
	respondCreated(c, user)
}

// UpdateUser applies a partial update. Demoting or disabling the last active
// administrator is refused.
func (uc *UsersController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	current, err := uc.store.GetUserByID(id)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}

	losesAdmin := (req.Role != nil && *req.Role != entities.UserRoleAdmin) || (req.Active != nil && !*req.Active)
	if losesAdmin && uc.isLastAdmin(c, current) {
		return
	}

	if req.Password != nil {
		if err := uc.accounts.SetPassword(id, *req.Password); err != nil {
			if auth.IsUserInputError(err) {
				respondBadRequest(c, err.Error())
				return
			}
			respondInternalError(c, err, "set password")
			return
		}
	}

	user, err := uc.store.UpdateUser(id, users.Update{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	recordActivity(c, uc.recorder, activity.Entry{
		Type:       entities.ActivityUsers,
		Action:     "user_update",
		EntityType: "user",
		EntityID:   idPtr(id),
		Metadata:   map[string]any{"password_reset": req.Password != nil},
	})
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account. Callers cannot delete themselves and the
// last active administrator is kept.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == auth.GetUserID(c) {
		respondError(c, http.StatusConflict, CodeConflict, "cannot delete your own account")
		return
	}
	current, err := uc.store.GetUserByID(id)
	if err != nil {
		respondStoreError(c, err, "user")
		return
	}
	if uc.isLastAdmin(c, current) {
		return
	}
	if err := uc.store.DeleteUser(id); err != nil {
		respondStoreError(c, err, "user")
		return
	}
	recordActivity(c, uc.recorder, activity.Entry{
		Type:        entities.ActivityUsers,
		Action:      "user_delete",
		Description: fmt.Sprintf("Deleted account %q", current.Username),
		EntityType:  "user",
		EntityID:    idPtr(id),
	})
	respondSuccess(c, "user deleted")
}

// isLastAdmin responds with 409 and returns true when user is the only
// active administrator.
func (uc *UsersController) isLastAdmin(c *gin.Context, user *entities.User) bool {
	if user.Role != entities.UserRoleAdmin || !user.Active {
		return false
	}
	count, err := uc.store.CountActiveAdmins()
	if err != nil {
		respondInternalError(c, err, "count admins")
		return true
	}
	if count <= 1 {
		respondError(c, http.StatusConflict, CodeConflict, auth.ErrLastAdmin.Error())
		return true
	}
	return false
}
