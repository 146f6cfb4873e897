package service

import (
	"context"
	"log"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/events"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/utils"
)

// ExpenseStore is the persistence surface for the expense ledger.
type ExpenseStore interface {
	Create(e *models.Expense) error
	GetByID(id string) (*models.Expense, error)
	Update(e *models.Expense) error
	Delete(id string) error
	List(q commands.ListExpensesQuery) ([]*models.Expense, error)
	ListByDateRange(start, end time.Time) ([]*models.Expense, error)
	Totals() (totalExpenses, allocatedTotal float64, err error)
	AddAllocation(expenseID string, a models.Allocation) error
	RemoveAllocation(expenseID, allocationID string) error
}

// AllocationResult is the /allocate response: the updated expense plus
// the refreshed fund overview.
type AllocationResult struct {
	Expense  *models.ExpenseView  `json:"expense"`
	Overview *models.FundOverview `json:"overview"`
}

// ExpenseService owns the expense ledger and the fund-allocation rules.
// The fund balance is recomputed from source records on every call;
// nothing here is cached or persisted as a running total.
type ExpenseService struct {
	expenses  ExpenseStore
	payments  PaymentStore
	publisher Publisher
	now       func() time.Time
}

func NewExpenseService(expenses ExpenseStore, payments PaymentStore, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		payments:  payments,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ExpenseService) List(q commands.ListExpensesQuery) ([]*models.ExpenseView, error) {
	expenses, err := s.expenses.List(q)
	if err != nil {
		return nil, err
	}
	return models.NewExpenseViews(expenses), nil
}

func (s *ExpenseService) Get(id string) (*models.ExpenseView, error) {
	expense, err := s.expenses.GetByID(id)
	if err != nil {
		return nil, err
	}
	return models.NewExpenseView(expense), nil
}

func (s *ExpenseService) Create(cmd commands.CreateExpenseCommand) (*models.ExpenseView, error) {
	if cmd.Amount <= 0 || cmd.Description == "" || cmd.Category == "" || cmd.Date.IsZero() {
		return nil, apperr.Validation("Amount, description, category and date are required")
	}
	if !models.ValidCategory(cmd.Category) {
		return nil, apperr.Validation("Unknown expense category %q", cmd.Category)
	}

	now := s.now()
	expense := &models.Expense{
		ID:          utils.GenerateID("exp"),
		Amount:      cmd.Amount,
		Description: cmd.Description,
		Category:    cmd.Category,
		Date:        cmd.Date,
		Vendor:      cmd.Vendor,
		Notes:       cmd.Notes,
		ReceiptURL:  cmd.ReceiptURL,
		CreatedBy:   cmd.CreatedBy,
		Allocations: []models.Allocation{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.expenses.Create(expense); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(context.Background(), events.ExpenseEventsStream, events.ExpenseCreated, events.ExpenseCreatedEvent{
		ExpenseID: expense.ID,
		Category:  expense.Category,
		Amount:    expense.Amount,
	}); err != nil {
		log.Printf("Failed to publish expense.created event: %v", err)
	}
	return models.NewExpenseView(expense), nil
}

func (s *ExpenseService) Update(cmd commands.UpdateExpenseCommand) (*models.ExpenseView, error) {
	if cmd.Amount <= 0 || cmd.Description == "" || cmd.Category == "" || cmd.Date.IsZero() {
		return nil, apperr.Validation("Amount, description, category and date are required")
	}
	if !models.ValidCategory(cmd.Category) {
		return nil, apperr.Validation("Unknown expense category %q", cmd.Category)
	}

	expense, err := s.expenses.GetByID(cmd.ExpenseID)
	if err != nil {
		return nil, err
	}
	expense.Amount = cmd.Amount
	expense.Description = cmd.Description
	expense.Category = cmd.Category
	expense.Date = cmd.Date
	expense.Vendor = cmd.Vendor
	expense.Notes = cmd.Notes
	expense.ReceiptURL = cmd.ReceiptURL
	expense.UpdatedAt = s.now()

	if err := s.expenses.Update(expense); err != nil {
		return nil, err
	}
	return models.NewExpenseView(expense), nil
}

func (s *ExpenseService) Delete(cmd commands.DeleteExpenseCommand) error {
	return s.expenses.Delete(cmd.ExpenseID)
}

// Stats aggregates one calendar year of expenses: a 12-bucket monthly
// series, per-category sums, the year total, and the current month's
// total when the requested year is the current one.
func (s *ExpenseService) Stats(q commands.ExpenseStatsQuery) (*models.ExpenseStats, error) {
	now := s.now()
	year := q.Year
	if year == 0 {
		year = now.Year()
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	expenses, err := s.expenses.ListByDateRange(start, end)
	if err != nil {
		return nil, err
	}

	stats := &models.ExpenseStats{
		Year:           year,
		CategoryTotals: make(map[string]float64),
	}
	for _, e := range expenses {
		stats.MonthlyTotals[int(e.Date.Month())-1] += e.Amount
		stats.CategoryTotals[e.Category] += e.Amount
		stats.GrandTotal += e.Amount
	}
	if now.Year() == year {
		stats.CurrentMonthTotal = stats.MonthlyTotals[int(now.Month())-1]
	}
	return stats, nil
}

// Overview recomputes the fund position from source records.
func (s *ExpenseService) Overview() (*models.FundOverview, error) {
	paidRevenue, err := s.payments.PaidRevenue()
	if err != nil {
		return nil, err
	}
	totalExpenses, allocated, err := s.expenses.Totals()
	if err != nil {
		return nil, err
	}
	return &models.FundOverview{
		PaidRevenue:         paidRevenue,
		TotalExpenses:       totalExpenses,
		AllocatedToExpenses: allocated,
		FundBalance:         paidRevenue - allocated,
		OutstandingExpenses: totalExpenses - allocated,
	}, nil
}

// Allocate earmarks part of the collected fund against one expense.
// The cap is min(remaining on the expense, current fund balance); the
// error message cites the computed maximum.
func (s *ExpenseService) Allocate(cmd commands.AllocateFundsCommand) (*AllocationResult, error) {
	expense, err := s.expenses.GetByID(cmd.ExpenseID)
	if err != nil {
		return nil, err
	}

	overview, err := s.Overview()
	if err != nil {
		return nil, err
	}

	remaining := expense.RemainingAmount()
	maxAllocatable := remaining
	if overview.FundBalance < maxAllocatable {
		maxAllocatable = overview.FundBalance
	}
	if maxAllocatable < 0 {
		maxAllocatable = 0
	}
	if cmd.Amount <= 0 || cmd.Amount > maxAllocatable {
		return nil, apperr.InsufficientFunds("Allocation must be between 0 and %.2f", maxAllocatable)
	}

	allocation := models.Allocation{
		ID:          utils.GenerateID("alc"),
		Amount:      cmd.Amount,
		AllocatedAt: s.now(),
		AllocatedBy: cmd.AdminID,
		Note:        cmd.Note,
	}
	if err := s.expenses.AddAllocation(expense.ID, allocation); err != nil {
		return nil, err
	}
	expense.Allocations = append(expense.Allocations, allocation)

	refreshed, err := s.Overview()
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(context.Background(), events.ExpenseEventsStream, events.FundsAllocated, events.FundsAllocatedEvent{
		ExpenseID:    expense.ID,
		AllocationID: allocation.ID,
		Amount:       allocation.Amount,
		AdminID:      cmd.AdminID,
	}); err != nil {
		log.Printf("Failed to publish funds.allocated event: %v", err)
	}
	return &AllocationResult{
		Expense:  models.NewExpenseView(expense),
		Overview: refreshed,
	}, nil
}

// RemoveAllocation deletes one allocation by identity. Removal only
// returns money to the fund, so no balance re-check is needed.
func (s *ExpenseService) RemoveAllocation(cmd commands.RemoveAllocationCommand) (*AllocationResult, error) {
	expense, err := s.expenses.GetByID(cmd.ExpenseID)
	if err != nil {
		return nil, err
	}
	if err := s.expenses.RemoveAllocation(cmd.ExpenseID, cmd.AllocationID); err != nil {
		return nil, err
	}

	kept := expense.Allocations[:0]
	for _, a := range expense.Allocations {
		if a.ID != cmd.AllocationID {
			kept = append(kept, a)
		}
	}
	expense.Allocations = kept

	overview, err := s.Overview()
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(context.Background(), events.ExpenseEventsStream, events.AllocationRemoved, events.AllocationRemovedEvent{
		ExpenseID:    cmd.ExpenseID,
		AllocationID: cmd.AllocationID,
	}); err != nil {
		log.Printf("Failed to publish allocation.removed event: %v", err)
	}
	return &AllocationResult{
		Expense:  models.NewExpenseView(expense),
		Overview: overview,
	}, nil
}
