// Package policy centralizes capability checks. Handlers and route gates
// ask Can(actor, action, owner) instead of re-deriving role comparisons
// per route.
package policy

import "github.com/salahe03/residex/internal/models"

// Actor is the authenticated caller, taken from the verified token.
type Actor struct {
	ID   string
	Role string
}

// Action enumerates the guarded operations.
type Action int

const (
	// ManageUsers covers user CRUD, approval and rejection.
	ManageUsers Action = iota
	// ManageCharges covers charge creation, edits, confirm/reject.
	ManageCharges
	// SubmitPayment covers proof submission on an owned charge.
	SubmitPayment
	// ViewUserPayments covers reading one resident's charge history.
	ViewUserPayments
	// ViewOwnUser covers reading a single account record.
	ViewOwnUser
	// ManageLedger covers expense CRUD and fund allocation.
	ManageLedger
)

// Can reports whether the actor may perform the action. ownerID is the
// id of the resource owner for self-scoped actions; pass "" for actions
// that have no owner.
func Can(actor Actor, action Action, ownerID string) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	switch action {
	case SubmitPayment, ViewUserPayments, ViewOwnUser:
		return ownerID != "" && actor.ID == ownerID
	default:
		return false
	}
}
