package service

import (
	"context"
	"log"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/events"
	"github.com/salahe03/residex/internal/middleware"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/utils"
)

// UserStore is the persistence surface the account services depend on.
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	ListAll() ([]*models.User, error)
	ListPending() ([]*models.User, error)
	ListResidents() ([]*models.User, error)
	ListActiveResidentsByIDs(ids []string) ([]*models.User, error)
	ApartmentOccupant(apartment, excludeID string) (string, error)
	Stats() (*models.UserStats, error)
}

// Publisher is the event stream surface. Failures are logged by
// callers, never surfaced to the client.
type Publisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AuthResult carries a fresh token plus the authenticated user.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService registers accounts and authenticates logins. New non-admin
// accounts enter the approval gate inactive; admins are created active.
type AuthService struct {
	users     UserStore
	publisher Publisher
}

func NewAuthService(users UserStore, publisher Publisher) *AuthService {
	return &AuthService{users: users, publisher: publisher}
}

func (s *AuthService) Register(cmd commands.RegisterCommand) (*models.User, error) {
	role := cmd.Role
	if role == "" {
		role = models.RoleTenant
	}
	if role != models.RoleTenant && role != models.RoleLandlord && role != models.RoleAdmin {
		return nil, apperr.Validation("Unknown role %q", cmd.Role)
	}
	if role != models.RoleAdmin {
		if cmd.Phone == "" || cmd.ApartmentNumber == "" || cmd.Status == "" {
			return nil, apperr.Validation("Phone, apartment number and occupancy status are required for residents")
		}
		if cmd.Status != models.OccupancyOwner && cmd.Status != models.OccupancyTenant {
			return nil, apperr.Validation("Occupancy status must be owner or tenant")
		}
	}
	if cmd.MonthlyCharge < 0 {
		return nil, apperr.Validation("Monthly charge cannot be negative")
	}

	email := utils.NormalizeEmail(cmd.Email)
	if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
		return nil, apperr.Conflict("User already exists")
	}

	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:              utils.GenerateID("usr"),
		Name:            cmd.Name,
		Email:           email,
		PasswordHash:    passwordHash,
		Role:            role,
		Phone:           cmd.Phone,
		ApartmentNumber: utils.NormalizeApartment(cmd.ApartmentNumber),
		MonthlyCharge:   cmd.MonthlyCharge,
		Status:          cmd.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if role == models.RoleAdmin {
		user.IsActive = true
		user.ApprovedAt = &now
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(context.Background(), events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}); err != nil {
		log.Printf("Failed to publish user.registered event: %v", err)
	}
	return user, nil
}

// Login verifies credentials and issues a token. An inactive account is
// refused with a pending-approval error so the client can show a
// message distinct from bad credentials.
func (s *AuthService) Login(cmd commands.LoginCommand) (*AuthResult, error) {
	user, err := s.users.GetByEmail(utils.NormalizeEmail(cmd.Email))
	if err != nil {
		return nil, apperr.Auth("Invalid email or password")
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, apperr.Auth("Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperr.PendingApproval("Your account is awaiting admin approval")
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
