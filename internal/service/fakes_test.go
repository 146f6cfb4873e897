package service

import (
	"context"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/models"
)

// ---- in-memory fakes ----

type stubPublisher struct {
	published []string
}

func (p *stubPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	p.published = append(p.published, eventType)
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
	order []string
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.Create(u)
	}
	return s
}

func (s *fakeUserStore) Create(u *models.User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return apperr.Conflict("Email or apartment already in use")
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	s.order = append(s.order, u.ID)
	return nil
}

func (s *fakeUserStore) GetByID(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (s *fakeUserStore) Update(u *models.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return apperr.NotFound("User not found")
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) Delete(id string) error {
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) ListAll() ([]*models.User, error) {
	var out []*models.User
	for _, id := range s.order {
		if u, ok := s.users[id]; ok && u.RejectedAt == nil {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ListPending() ([]*models.User, error) {
	var out []*models.User
	for _, id := range s.order {
		if u, ok := s.users[id]; ok && u.IsPending() {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ListResidents() ([]*models.User, error) {
	var out []*models.User
	for _, id := range s.order {
		if u, ok := s.users[id]; ok && u.Role != models.RoleAdmin && u.IsActive {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ListActiveResidentsByIDs(ids []string) ([]*models.User, error) {
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*models.User
	for _, id := range s.order {
		if u, ok := s.users[id]; ok && wanted[id] && u.Role != models.RoleAdmin && u.IsActive {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeUserStore) ApartmentOccupant(apartment, excludeID string) (string, error) {
	for _, u := range s.users {
		if u.ApartmentNumber == apartment && u.ID != excludeID && u.IsActive {
			return u.Name, nil
		}
	}
	return "", nil
}

func (s *fakeUserStore) Stats() (*models.UserStats, error) {
	stats := &models.UserStats{}
	for _, u := range s.users {
		stats.TotalUsers++
		if u.IsActive {
			stats.ActiveUsers++
		}
		if u.IsPending() {
			stats.PendingUsers++
		}
		if u.Role == models.RoleAdmin {
			stats.TotalAdmins++
		}
		stats.TotalMonthlyCharges += u.MonthlyCharge
	}
	if stats.TotalUsers > 0 {
		stats.AverageMonthlyCharge = stats.TotalMonthlyCharges / float64(stats.TotalUsers)
	}
	return stats, nil
}

type fakePaymentStore struct {
	payments map[string]*models.Payment
	order    []string
}

func newFakePaymentStore(payments ...*models.Payment) *fakePaymentStore {
	s := &fakePaymentStore{payments: map[string]*models.Payment{}}
	for _, p := range payments {
		s.Create(p)
	}
	return s
}

func (s *fakePaymentStore) Create(p *models.Payment) error {
	cp := *p
	s.payments[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *fakePaymentStore) GetByID(id string) (*models.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, apperr.NotFound("Payment not found")
	}
	cp := *p
	return &cp, nil
}

func (s *fakePaymentStore) Update(p *models.Payment) error {
	if _, ok := s.payments[p.ID]; !ok {
		return apperr.NotFound("Payment not found")
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *fakePaymentStore) Delete(id string) error {
	if _, ok := s.payments[id]; !ok {
		return apperr.NotFound("Payment not found")
	}
	delete(s.payments, id)
	return nil
}

func (s *fakePaymentStore) List() ([]*models.Payment, error) {
	var out []*models.Payment
	for _, id := range s.order {
		if p, ok := s.payments[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) ListByResident(residentID string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, id := range s.order {
		if p, ok := s.payments[id]; ok && p.ResidentID == residentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) PaidRevenue() (float64, error) {
	var total float64
	for _, p := range s.payments {
		if p.Status == models.PaymentPaid {
			total += p.Amount
		}
	}
	return total, nil
}

type fakeExpenseStore struct {
	expenses map[string]*models.Expense
	order    []string
}

func newFakeExpenseStore(expenses ...*models.Expense) *fakeExpenseStore {
	s := &fakeExpenseStore{expenses: map[string]*models.Expense{}}
	for _, e := range expenses {
		s.Create(e)
	}
	return s
}

func copyExpense(e *models.Expense) *models.Expense {
	cp := *e
	cp.Allocations = append([]models.Allocation{}, e.Allocations...)
	return &cp
}

func (s *fakeExpenseStore) Create(e *models.Expense) error {
	s.expenses[e.ID] = copyExpense(e)
	s.order = append(s.order, e.ID)
	return nil
}

func (s *fakeExpenseStore) GetByID(id string) (*models.Expense, error) {
	e, ok := s.expenses[id]
	if !ok {
		return nil, apperr.NotFound("Expense not found")
	}
	return copyExpense(e), nil
}

func (s *fakeExpenseStore) Update(e *models.Expense) error {
	if _, ok := s.expenses[e.ID]; !ok {
		return apperr.NotFound("Expense not found")
	}
	s.expenses[e.ID] = copyExpense(e)
	return nil
}

func (s *fakeExpenseStore) Delete(id string) error {
	if _, ok := s.expenses[id]; !ok {
		return apperr.NotFound("Expense not found")
	}
	delete(s.expenses, id)
	return nil
}

func (s *fakeExpenseStore) List(q commands.ListExpensesQuery) ([]*models.Expense, error) {
	var out []*models.Expense
	for _, id := range s.order {
		if e, ok := s.expenses[id]; ok {
			if q.Category != "" && q.Category != "all" && e.Category != q.Category {
				continue
			}
			out = append(out, copyExpense(e))
		}
	}
	return out, nil
}

func (s *fakeExpenseStore) ListByDateRange(start, end time.Time) ([]*models.Expense, error) {
	var out []*models.Expense
	for _, id := range s.order {
		if e, ok := s.expenses[id]; ok && !e.Date.Before(start) && e.Date.Before(end) {
			out = append(out, copyExpense(e))
		}
	}
	return out, nil
}

func (s *fakeExpenseStore) Totals() (totalExpenses, allocatedTotal float64, err error) {
	for _, e := range s.expenses {
		totalExpenses += e.Amount
		allocatedTotal += e.AllocatedTotal()
	}
	return totalExpenses, allocatedTotal, nil
}

func (s *fakeExpenseStore) AddAllocation(expenseID string, a models.Allocation) error {
	e, ok := s.expenses[expenseID]
	if !ok {
		return apperr.NotFound("Expense not found")
	}
	e.Allocations = append(e.Allocations, a)
	return nil
}

func (s *fakeExpenseStore) RemoveAllocation(expenseID, allocationID string) error {
	e, ok := s.expenses[expenseID]
	if !ok {
		return apperr.NotFound("Expense not found")
	}
	for i, a := range e.Allocations {
		if a.ID == allocationID {
			e.Allocations = append(e.Allocations[:i], e.Allocations[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Allocation not found")
}
