package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/middleware"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/policy"
)

// ChargeManager defines the payment lifecycle operations used by
// PaymentHandler.
type ChargeManager interface {
	CreateCharges(commands.CreateChargesCommand) ([]*models.Payment, error)
	Submit(commands.SubmitPaymentCommand, policy.Actor) (*models.Payment, error)
	Confirm(commands.ConfirmPaymentCommand) (*models.Payment, error)
	Reject(commands.RejectPaymentCommand) (*models.Payment, error)
	MarkPaid(commands.MarkPaymentPaidCommand) (*models.Payment, error)
	Update(commands.UpdatePaymentCommand) (*models.Payment, error)
	Delete(commands.DeletePaymentCommand) error
	ListAll() ([]*models.PaymentView, error)
	ListForUser(commands.ListUserPaymentsQuery) ([]*models.PaymentView, error)
	Stats() (*models.PaymentStats, error)
}

type PaymentHandler struct {
	payments ChargeManager
}

type CreateChargesRequest struct {
	Amount          float64  `json:"amount" validate:"required,gt=0"`
	Description     string   `json:"description" validate:"required"`
	Period          string   `json:"period" validate:"required"`
	DueDate         string   `json:"dueDate" validate:"required"`
	Type            string   `json:"type" validate:"omitempty,oneof=monthly_charge special_assessment fine other"`
	TargetResidents []string `json:"targetResidents"`
}

type SubmitPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash bank_transfer check other"`
	PaymentDate   string `json:"paymentDate" validate:"required"`
	Reference     string `json:"reference"`
	Notes         string `json:"notes"`
}

type AdminNotesRequest struct {
	AdminNotes string `json:"adminNotes"`
}

type MarkPaidRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash bank_transfer check other"`
	PaymentDate   string `json:"paymentDate" validate:"required"`
	Reference     string `json:"reference"`
	Notes         string `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"omitempty,gt=0"`
	Description string  `json:"description"`
	Period      string  `json:"period"`
	DueDate     string  `json:"dueDate"`
	Type        string  `json:"type" validate:"omitempty,oneof=monthly_charge special_assessment fine other"`
}

func NewPaymentHandler(payments ChargeManager) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) ListAll(c *gin.Context) {
	payments, err := h.payments.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(payments), payments)
}

func (h *PaymentHandler) ListForUser(c *gin.Context) {
	actor := middleware.GetActor(c)
	payments, err := h.payments.ListForUser(commands.ListUserPaymentsQuery{
		ResidentID: c.Param("userId"),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(payments), payments)
}

func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.payments.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, stats)
}

func (h *PaymentHandler) CreateCharges(c *gin.Context) {
	var req CreateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	dueDate, ok := parseDate(req.DueDate)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid due date")
		return
	}

	created, err := h.payments.CreateCharges(commands.CreateChargesCommand{
		Amount:          req.Amount,
		Description:     req.Description,
		Period:          req.Period,
		DueDate:         dueDate,
		Type:            req.Type,
		TargetResidents: req.TargetResidents,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	plural := ""
	if len(created) != 1 {
		plural = "s"
	}
	middleware.RespondWithMessage(c, http.StatusCreated,
		fmt.Sprintf("Created %d payment%s for resident%s", len(created), plural, plural),
		gin.H{"count": len(created), "payments": created},
	)
}

func (h *PaymentHandler) Submit(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	paymentDate, ok := parseDate(req.PaymentDate)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid payment date")
		return
	}

	actor := middleware.GetActor(c)
	payment, err := h.payments.Submit(commands.SubmitPaymentCommand{
		PaymentID:   c.Param("id"),
		SubmitterID: actor.ID,
		Method:      req.PaymentMethod,
		Date:        paymentDate,
		Reference:   req.Reference,
		Notes:       req.Notes,
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment submitted successfully", payment)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req AdminNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	payment, err := h.payments.Confirm(commands.ConfirmPaymentCommand{
		PaymentID:  c.Param("id"),
		AdminID:    adminID,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment confirmed successfully", payment)
}

func (h *PaymentHandler) Reject(c *gin.Context) {
	var req AdminNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	payment, err := h.payments.Reject(commands.RejectPaymentCommand{
		PaymentID:  c.Param("id"),
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment rejected", payment)
}

func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	paymentDate, ok := parseDate(req.PaymentDate)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid payment date")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	payment, err := h.payments.MarkPaid(commands.MarkPaymentPaidCommand{
		PaymentID: c.Param("id"),
		AdminID:   adminID,
		Method:    req.PaymentMethod,
		Date:      paymentDate,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment marked as paid successfully", payment)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	cmd := commands.UpdatePaymentCommand{
		PaymentID:   c.Param("id"),
		Amount:      req.Amount,
		Description: req.Description,
		Period:      req.Period,
		Type:        req.Type,
	}
	if req.DueDate != "" {
		dueDate, ok := parseDate(req.DueDate)
		if !ok {
			middleware.RespondWithError(c, http.StatusBadRequest, "Invalid due date")
			return
		}
		cmd.DueDate = dueDate
	}

	payment, err := h.payments.Update(cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment updated successfully", payment)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.payments.Delete(commands.DeletePaymentCommand{PaymentID: c.Param("id")}); err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithMessage(c, http.StatusOK, "Payment deleted successfully", nil)
}
