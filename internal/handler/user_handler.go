package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/middleware"
	"github.com/salahe03/residex/internal/models"
)

// UserManager defines the account operations used by UserHandler.
type UserManager interface {
	ListAll() ([]*models.User, error)
	ListPending() ([]*models.User, error)
	ListResidents() ([]*models.User, error)
	Stats() (*models.UserStats, error)
	Get(commands.GetUserQuery) (*models.User, error)
	Approve(commands.ApproveUserCommand) (*models.User, error)
	Reject(commands.RejectUserCommand) (*models.User, error)
	Update(commands.UpdateUserCommand) (*models.User, error)
	Delete(commands.DeleteUserCommand) (string, error)
}

type UserHandler struct {
	users UserManager
}

type ApproveUserRequest struct {
	MonthlyCharge   *float64 `json:"monthlyCharge" validate:"omitempty,gte=0"`
	ApartmentNumber string   `json:"apartmentNumber"`
	Status          string   `json:"status" validate:"omitempty,oneof=owner tenant"`
}

type UpdateUserRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	ApartmentNumber string   `json:"apartmentNumber"`
	Status          string   `json:"status" validate:"omitempty,oneof=owner tenant"`
	MonthlyCharge   *float64 `json:"monthlyCharge" validate:"omitempty,gte=0"`
}

func NewUserHandler(users UserManager) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) ListAll(c *gin.Context) {
	users, err := h.users.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(users), users)
}

func (h *UserHandler) ListPending(c *gin.Context) {
	users, err := h.users.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(users), users)
}

func (h *UserHandler) ListResidents(c *gin.Context) {
	users, err := h.users.ListResidents()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(users), users)
}

func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, stats)
}

func (h *UserHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	user, err := h.users.Get(commands.GetUserQuery{
		UserID:    c.Param("id"),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, user)
}

func (h *UserHandler) Approve(c *gin.Context) {
	var req ApproveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	adminID, _ := middleware.GetUserID(c)
	user, err := h.users.Approve(commands.ApproveUserCommand{
		UserID:          c.Param("id"),
		AdminID:         adminID,
		MonthlyCharge:   req.MonthlyCharge,
		ApartmentNumber: req.ApartmentNumber,
		Status:          req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "User "+user.Name+" approved successfully", user)
}

func (h *UserHandler) Reject(c *gin.Context) {
	user, err := h.users.Reject(commands.RejectUserCommand{UserID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "User "+user.Name+" rejected successfully", user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.users.Update(commands.UpdateUserCommand{
		UserID:          c.Param("id"),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ApartmentNumber: req.ApartmentNumber,
		Status:          req.Status,
		MonthlyCharge:   req.MonthlyCharge,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)
	message, err := h.users.Delete(commands.DeleteUserCommand{
		UserID:  c.Param("id"),
		ActorID: actorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, message, nil)
}
