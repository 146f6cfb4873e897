package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/middleware"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/service"
)

// Authenticator defines the operations used by AuthHandler.
type Authenticator interface {
	Register(commands.RegisterCommand) (*models.User, error)
	Login(commands.LoginCommand) (*service.AuthResult, error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	auth Authenticator
}

type RegisterRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	Role            string  `json:"role" validate:"omitempty,oneof=tenant landlord admin"`
	Phone           string  `json:"phone"`
	ApartmentNumber string  `json:"apartmentNumber"`
	Status          string  `json:"status" validate:"omitempty,oneof=owner tenant"`
	MonthlyCharge   float64 `json:"monthlyCharge" validate:"gte=0"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.auth.Register(commands.RegisterCommand{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		Phone:           req.Phone,
		ApartmentNumber: req.ApartmentNumber,
		Status:          req.Status,
		MonthlyCharge:   req.MonthlyCharge,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RespondWithMessage(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	result, err := h.auth.Login(commands.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RespondWithData(c, http.StatusOK, result)
}
