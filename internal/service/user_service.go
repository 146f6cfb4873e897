package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/events"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/policy"
	"github.com/salahe03/residex/internal/utils"
)

// UserService runs the approval gate and account CRUD.
type UserService struct {
	users     UserStore
	publisher Publisher
}

func NewUserService(users UserStore, publisher Publisher) *UserService {
	return &UserService{users: users, publisher: publisher}
}

func (s *UserService) ListAll() ([]*models.User, error) {
	return s.users.ListAll()
}

func (s *UserService) ListPending() ([]*models.User, error) {
	return s.users.ListPending()
}

func (s *UserService) ListResidents() ([]*models.User, error) {
	return s.users.ListResidents()
}

func (s *UserService) Stats() (*models.UserStats, error) {
	return s.users.Stats()
}

func (s *UserService) Get(q commands.GetUserQuery) (*models.User, error) {
	actor := policy.Actor{ID: q.ActorID, Role: q.ActorRole}
	if !policy.Can(actor, policy.ViewOwnUser, q.UserID) {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.users.GetByID(q.UserID)
}

// Approve activates a pending account, stamping who approved it and
// when. Optional building fields override what the user registered with.
func (s *UserService) Approve(cmd commands.ApproveUserCommand) (*models.User, error) {
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user.RejectedAt != nil {
		return nil, apperr.InvalidState("Cannot approve a rejected account")
	}

	if cmd.ApartmentNumber != "" {
		user.ApartmentNumber = utils.NormalizeApartment(cmd.ApartmentNumber)
	}
	if user.ApartmentNumber != "" {
		occupant, err := s.users.ApartmentOccupant(user.ApartmentNumber, user.ID)
		if err != nil {
			return nil, err
		}
		if occupant != "" {
			return nil, apperr.Conflict("Apartment %s is already occupied by %s", user.ApartmentNumber, occupant)
		}
	}
	if cmd.MonthlyCharge != nil {
		if *cmd.MonthlyCharge < 0 {
			return nil, apperr.Validation("Monthly charge cannot be negative")
		}
		user.MonthlyCharge = *cmd.MonthlyCharge
	}
	if cmd.Status != "" {
		user.Status = cmd.Status
	}

	now := time.Now().UTC()
	user.IsActive = true
	user.ApprovedBy = cmd.AdminID
	user.ApprovedAt = &now
	user.UpdatedAt = now

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.UserEventsStream, events.UserApproved, events.UserApprovedEvent{
		UserID:  user.ID,
		AdminID: cmd.AdminID,
	}); err != nil {
		log.Printf("Failed to publish user.approved event: %v", err)
	}
	return user, nil
}

// Reject stamps the rejection. A rejected account is permanently
// excluded from pending and active listings.
func (s *UserService) Reject(cmd commands.RejectUserCommand) (*models.User, error) {
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.IsActive = false
	user.RejectedAt = &now
	user.UpdatedAt = now

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(context.Background(), events.UserEventsStream, events.UserRejected, events.UserRejectedEvent{
		UserID: user.ID,
	}); err != nil {
		log.Printf("Failed to publish user.rejected event: %v", err)
	}
	return user, nil
}

func (s *UserService) Update(cmd commands.UpdateUserCommand) (*models.User, error) {
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return nil, err
	}

	if cmd.ApartmentNumber != "" {
		apartment := utils.NormalizeApartment(cmd.ApartmentNumber)
		occupant, err := s.users.ApartmentOccupant(apartment, user.ID)
		if err != nil {
			return nil, err
		}
		if occupant != "" {
			return nil, apperr.Conflict("Apartment %s is already occupied by %s", apartment, occupant)
		}
		user.ApartmentNumber = apartment
	}
	if cmd.Name != "" {
		user.Name = cmd.Name
	}
	if cmd.Email != "" {
		user.Email = utils.NormalizeEmail(cmd.Email)
	}
	if cmd.Phone != "" {
		user.Phone = cmd.Phone
	}
	if cmd.Status != "" {
		if cmd.Status != models.OccupancyOwner && cmd.Status != models.OccupancyTenant {
			return nil, apperr.Validation("Occupancy status must be owner or tenant")
		}
		user.Status = cmd.Status
	}
	if cmd.MonthlyCharge != nil {
		if *cmd.MonthlyCharge < 0 {
			return nil, apperr.Validation("Monthly charge cannot be negative")
		}
		user.MonthlyCharge = *cmd.MonthlyCharge
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(cmd commands.DeleteUserCommand) (string, error) {
	if cmd.UserID == cmd.ActorID {
		return "", apperr.Validation("Cannot delete your own account")
	}
	user, err := s.users.GetByID(cmd.UserID)
	if err != nil {
		return "", err
	}
	if err := s.users.Delete(cmd.UserID); err != nil {
		return "", err
	}
	if err := s.publisher.Publish(context.Background(), events.UserEventsStream, events.UserDeleted, events.UserDeletedEvent{
		UserID: cmd.UserID,
	}); err != nil {
		log.Printf("Failed to publish user.deleted event: %v", err)
	}
	return fmt.Sprintf("User %s deleted successfully", user.Name), nil
}
