package service

import (
	"context"
	"log"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/events"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/policy"
	"github.com/salahe03/residex/internal/utils"
)

// PaymentStore is the persistence surface for charges.
type PaymentStore interface {
	Create(p *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	Update(p *models.Payment) error
	Delete(id string) error
	List() ([]*models.Payment, error)
	ListByResident(residentID string) ([]*models.Payment, error)
	PaidRevenue() (float64, error)
}

// PaymentService drives the charge lifecycle:
// pending -> submitted -> paid, with submitted -> rejected -> submitted
// as the resubmission loop. Overdue is derived, never stored.
type PaymentService struct {
	payments  PaymentStore
	users     UserStore
	publisher Publisher
	now       func() time.Time
}

func NewPaymentService(payments PaymentStore, users UserStore, publisher Publisher) *PaymentService {
	return &PaymentService{
		payments:  payments,
		users:     users,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateCharges creates one pending charge per resolved resident.
// Writes are independent: a failure partway leaves earlier charges in
// place, matching the store's single-row atomicity.
func (s *PaymentService) CreateCharges(cmd commands.CreateChargesCommand) ([]*models.Payment, error) {
	if cmd.Amount <= 0 || cmd.Description == "" || cmd.Period == "" || cmd.DueDate.IsZero() {
		return nil, apperr.Validation("Amount, description, period, and due date are required")
	}
	chargeType := cmd.Type
	if chargeType == "" {
		chargeType = models.TypeMonthlyCharge
	}
	if !validChargeType(chargeType) {
		return nil, apperr.Validation("Unknown charge type %q", cmd.Type)
	}

	var residents []*models.User
	var err error
	if len(cmd.TargetResidents) > 0 {
		residents, err = s.users.ListActiveResidentsByIDs(cmd.TargetResidents)
		if err != nil {
			return nil, err
		}
		if len(residents) == 0 {
			return nil, apperr.Validation("No valid target residents found")
		}
	} else {
		residents, err = s.users.ListResidents()
		if err != nil {
			return nil, err
		}
		if len(residents) == 0 {
			return nil, apperr.Validation("No active residents found")
		}
	}

	now := s.now()
	created := make([]*models.Payment, 0, len(residents))
	for _, resident := range residents {
		payment := &models.Payment{
			ID:          utils.GenerateID("pay"),
			Amount:      cmd.Amount,
			Description: cmd.Description,
			Period:      cmd.Period,
			DueDate:     cmd.DueDate,
			Type:        chargeType,
			ResidentID:  resident.ID,
			Status:      models.PaymentPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.payments.Create(payment); err != nil {
			// no cross-row rollback: earlier charges stay
			return nil, err
		}
		created = append(created, payment)
	}

	if err := s.publisher.Publish(context.Background(), events.PaymentEventsStream, events.ChargesCreated, events.ChargesCreatedEvent{
		Count:  len(created),
		Amount: cmd.Amount,
		Period: cmd.Period,
	}); err != nil {
		log.Printf("Failed to publish charges.created event: %v", err)
	}
	return created, nil
}

// Submit records a resident's proof of payment. Legal from pending,
// rejected, or the derived overdue state.
func (s *PaymentService) Submit(cmd commands.SubmitPaymentCommand, actor policy.Actor) (*models.Payment, error) {
	if cmd.Method == "" || cmd.Date.IsZero() {
		return nil, apperr.Validation("Payment method and payment date are required")
	}
	if !validMethod(cmd.Method) {
		return nil, apperr.Validation("Unknown payment method %q", cmd.Method)
	}

	payment, err := s.payments.GetByID(cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if !policy.Can(actor, policy.SubmitPayment, payment.ResidentID) {
		return nil, apperr.Forbidden("You can only submit your own payments")
	}
	if !payment.CanSubmit() {
		return nil, apperr.InvalidState("Payment cannot be submitted from status %q", payment.Status)
	}

	now := s.now()
	date := cmd.Date
	payment.Status = models.PaymentSubmitted
	payment.Submission = models.PaymentSubmission{
		Method:      cmd.Method,
		Date:        &date,
		Reference:   cmd.Reference,
		Notes:       cmd.Notes,
		SubmittedAt: &now,
	}
	payment.UpdatedAt = now

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.PaymentEventsStream, events.PaymentSubmitted, events.PaymentSubmittedEvent{
		PaymentID:  payment.ID,
		ResidentID: payment.ResidentID,
		Method:     cmd.Method,
	}); err != nil {
		log.Printf("Failed to publish payment.submitted event: %v", err)
	}
	return payment, nil
}

// Confirm settles a submitted charge. Only legal from submitted; a
// second confirm of the same charge fails here.
func (s *PaymentService) Confirm(cmd commands.ConfirmPaymentCommand) (*models.Payment, error) {
	payment, err := s.payments.GetByID(cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentSubmitted {
		return nil, apperr.InvalidState("Payment cannot be confirmed from status %q", payment.Status)
	}

	now := s.now()
	payment.Status = models.PaymentPaid
	payment.Confirmation = models.Confirmation{
		ConfirmedAt: &now,
		ConfirmedBy: cmd.AdminID,
		AdminNotes:  cmd.AdminNotes,
	}
	payment.UpdatedAt = now

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.PaymentEventsStream, events.PaymentConfirmed, events.PaymentConfirmedEvent{
		PaymentID: payment.ID,
		AdminID:   cmd.AdminID,
		Amount:    payment.Amount,
	}); err != nil {
		log.Printf("Failed to publish payment.confirmed event: %v", err)
	}
	return payment, nil
}

// Reject sends a submitted charge back to the resident. All submission
// fields are cleared so a resubmission starts clean; the rejection
// reason lands in the shared admin-notes slot.
func (s *PaymentService) Reject(cmd commands.RejectPaymentCommand) (*models.Payment, error) {
	payment, err := s.payments.GetByID(cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentSubmitted {
		return nil, apperr.InvalidState("Payment cannot be rejected from status %q", payment.Status)
	}

	now := s.now()
	payment.Status = models.PaymentRejected
	payment.Submission = models.PaymentSubmission{}
	payment.Confirmation.AdminNotes = cmd.AdminNotes
	payment.UpdatedAt = now

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.PaymentEventsStream, events.PaymentRejected, events.PaymentRejectedEvent{
		PaymentID: payment.ID,
	}); err != nil {
		log.Printf("Failed to publish payment.rejected event: %v", err)
	}
	return payment, nil
}

// MarkPaid settles a charge directly, recording the payment details and
// the admin confirmation in one step.
func (s *PaymentService) MarkPaid(cmd commands.MarkPaymentPaidCommand) (*models.Payment, error) {
	if cmd.Method == "" || cmd.Date.IsZero() {
		return nil, apperr.Validation("Payment method and payment date are required")
	}

	payment, err := s.payments.GetByID(cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentPaid {
		return nil, apperr.InvalidState("Payment is already paid")
	}

	now := s.now()
	date := cmd.Date
	payment.Status = models.PaymentPaid
	payment.Submission = models.PaymentSubmission{
		Method:      cmd.Method,
		Date:        &date,
		Reference:   cmd.Reference,
		Notes:       cmd.Notes,
		SubmittedAt: &now,
	}
	payment.Confirmation = models.Confirmation{
		ConfirmedAt: &now,
		ConfirmedBy: cmd.AdminID,
		AdminNotes:  cmd.Notes,
	}
	payment.UpdatedAt = now

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.PaymentEventsStream, events.PaymentConfirmed, events.PaymentConfirmedEvent{
		PaymentID: payment.ID,
		AdminID:   cmd.AdminID,
		Amount:    payment.Amount,
	}); err != nil {
		log.Printf("Failed to publish payment.confirmed event: %v", err)
	}
	return payment, nil
}

// Update edits a charge unconditionally, regardless of status.
func (s *PaymentService) Update(cmd commands.UpdatePaymentCommand) (*models.Payment, error) {
	payment, err := s.payments.GetByID(cmd.PaymentID)
	if err != nil {
		return nil, err
	}
	if cmd.Amount > 0 {
		payment.Amount = cmd.Amount
	}
	if cmd.Description != "" {
		payment.Description = cmd.Description
	}
	if cmd.Period != "" {
		payment.Period = cmd.Period
	}
	if !cmd.DueDate.IsZero() {
		payment.DueDate = cmd.DueDate
	}
	if cmd.Type != "" {
		if !validChargeType(cmd.Type) {
			return nil, apperr.Validation("Unknown charge type %q", cmd.Type)
		}
		payment.Type = cmd.Type
	}
	payment.UpdatedAt = s.now()

	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Delete removes a charge unconditionally, regardless of status.
func (s *PaymentService) Delete(cmd commands.DeletePaymentCommand) error {
	return s.payments.Delete(cmd.PaymentID)
}

func (s *PaymentService) ListAll() ([]*models.PaymentView, error) {
	payments, err := s.payments.List()
	if err != nil {
		return nil, err
	}
	return models.NewPaymentViews(payments, s.now()), nil
}

func (s *PaymentService) ListForUser(q commands.ListUserPaymentsQuery) ([]*models.PaymentView, error) {
	actor := policy.Actor{ID: q.ActorID, Role: q.ActorRole}
	if !policy.Can(actor, policy.ViewUserPayments, q.ResidentID) {
		return nil, apperr.Forbidden("You can only view your own payments")
	}
	payments, err := s.payments.ListByResident(q.ResidentID)
	if err != nil {
		return nil, err
	}
	return models.NewPaymentViews(payments, s.now()), nil
}

// Stats aggregates all charges by display status. The overdue bucket
// uses the derived view, so pending and overdue never double count.
func (s *PaymentService) Stats() (*models.PaymentStats, error) {
	payments, err := s.payments.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &models.PaymentStats{}
	for _, p := range payments {
		stats.Total.Count++
		stats.Total.TotalAmount += p.Amount
		switch p.DisplayStatus(now) {
		case models.PaymentPaid:
			stats.Total.PaidAmount += p.Amount
		case models.PaymentOverdue:
			stats.Total.OverdueAmount += p.Amount
		case models.PaymentPending:
			stats.Total.PendingAmount += p.Amount
		}
	}
	if stats.Total.Count > 0 {
		stats.AveragePayment = stats.Total.TotalAmount / float64(stats.Total.Count)
	}
	return stats, nil
}

func validChargeType(t string) bool {
	switch t {
	case models.TypeMonthlyCharge, models.TypeSpecialAssessment, models.TypeFine, models.TypeOther:
		return true
	}
	return false
}

func validMethod(m string) bool {
	switch m {
	case models.MethodCash, models.MethodBankTransfer, models.MethodCheck, models.MethodOther:
		return true
	}
	return false
}
