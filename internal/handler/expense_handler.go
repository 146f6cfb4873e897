package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/middleware"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/service"
)

// LedgerManager defines the expense and fund-allocation operations used
// by ExpenseHandler.
type LedgerManager interface {
	List(commands.ListExpensesQuery) ([]*models.ExpenseView, error)
	Get(id string) (*models.ExpenseView, error)
	Create(commands.CreateExpenseCommand) (*models.ExpenseView, error)
	Update(commands.UpdateExpenseCommand) (*models.ExpenseView, error)
	Delete(commands.DeleteExpenseCommand) error
	Stats(commands.ExpenseStatsQuery) (*models.ExpenseStats, error)
	Overview() (*models.FundOverview, error)
	Allocate(commands.AllocateFundsCommand) (*service.AllocationResult, error)
	RemoveAllocation(commands.RemoveAllocationCommand) (*service.AllocationResult, error)
}

type ExpenseHandler struct {
	expenses LedgerManager
}

type ExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Vendor      string  `json:"vendor"`
	Notes       string  `json:"notes"`
	ReceiptURL  string  `json:"receiptUrl"`
}

type AllocateRequest struct {
	Amount float64 `json:"amount" validate:"required"`
	Note   string  `json:"note"`
}

func NewExpenseHandler(expenses LedgerManager) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

func (h *ExpenseHandler) List(c *gin.Context) {
	expenses, err := h.expenses.List(commands.ListExpensesQuery{
		Month:    c.Query("month"),
		Category: c.Query("category"),
		Search:   c.Query("q"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithList(c, len(expenses), expenses)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	expense, err := h.expenses.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, expense)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	expense, err := h.expenses.Create(commands.CreateExpenseCommand{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
		ReceiptURL:  req.ReceiptURL,
		CreatedBy:   adminID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusCreated, expense)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid date")
		return
	}

	expense, err := h.expenses.Update(commands.UpdateExpenseCommand{
		ExpenseID:   c.Param("id"),
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		Vendor:      req.Vendor,
		Notes:       req.Notes,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID := c.Param("id")
	if err := h.expenses.Delete(commands.DeleteExpenseCommand{ExpenseID: expenseID}); err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, gin.H{"deletedExpenseId": expenseID})
}

func (h *ExpenseHandler) Stats(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	stats, err := h.expenses.Stats(commands.ExpenseStatsQuery{Year: year})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, stats)
}

func (h *ExpenseHandler) Overview(c *gin.Context) {
	overview, err := h.expenses.Overview()
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, overview)
}

func (h *ExpenseHandler) Allocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	adminID, _ := middleware.GetUserID(c)
	result, err := h.expenses.Allocate(commands.AllocateFundsCommand{
		ExpenseID: c.Param("id"),
		Amount:    req.Amount,
		AdminID:   adminID,
		Note:      req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, result)
}

func (h *ExpenseHandler) RemoveAllocation(c *gin.Context) {
	result, err := h.expenses.RemoveAllocation(commands.RemoveAllocationCommand{
		ExpenseID:    c.Param("id"),
		AllocationID: c.Param("allocationId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.RespondWithData(c, http.StatusOK, result)
}
