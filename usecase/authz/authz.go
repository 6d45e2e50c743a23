// Package authz holds the authorization policy as a pure decision function.
// The caller identity is always an explicit argument; nothing here reads
// ambient or request-scoped state, which keeps every decision directly
// testable against the policy table below.
package authz

import "github.com/fastygo/user-service/domain"

// Operation names a protected domain operation.
type Operation string

const (
	OpUserGet         Operation = "user.get"
	OpUserSearch      Operation = "user.search"
	OpUserCreate      Operation = "user.create"
	OpUserUpdate      Operation = "user.update"
	OpUserDelete      Operation = "user.delete"
	OpUserSetActivity Operation = "user.set_activity"
	OpUserGetByEmail  Operation = "user.get_by_email"

	OpCardList        Operation = "card.list"
	OpCardAdd         Operation = "card.add"
	OpCardUpdate      Operation = "card.update"
	OpCardDelete      Operation = "card.delete"
	OpCardSetActivity Operation = "card.set_activity"
)

// Decide maps (identity, operation, resource owner) to an allow/deny outcome.
// A deny is ErrUnauthenticated for anonymous callers and ErrForbidden for
// authenticated ones, so the transport layer can answer 401 vs 403.
//
// Policy table:
//
//	user.get           admin | service | self
//	user.search        admin
//	user.create        service
//	user.update        admin | self
//	user.delete        admin | service
//	user.set_activity  admin
//	user.get_by_email  service
//	card.list          admin | self(owner)
//	card.add           admin | self(owner)
//	card.update        admin | self(owner of the stored card)
//	card.delete        admin
//	card.set_activity  admin
//
// user.create and user.get_by_email are deliberately service-only: they back
// the registration and login flows of the upstream auth service.
//
// For card.update the ownerID must come from a store lookup of the card being
// updated, never from caller-supplied input.
func Decide(ident domain.Identity, op Operation, ownerID int64) error {
	if allowed(ident, op, ownerID) {
		return nil
	}
	if ident.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}

func allowed(ident domain.Identity, op Operation, ownerID int64) bool {
	switch op {
	case OpUserGet:
		return ident.IsAdmin() || ident.IsService() || ident.IsSelf(ownerID)
	case OpUserSearch:
		return ident.IsAdmin()
	case OpUserCreate:
		return ident.IsService()
	case OpUserUpdate:
		return ident.IsAdmin() || ident.IsSelf(ownerID)
	case OpUserDelete:
		return ident.IsAdmin() || ident.IsService()
	case OpUserSetActivity:
		return ident.IsAdmin()
	case OpUserGetByEmail:
		return ident.IsService()
	case OpCardList, OpCardAdd, OpCardUpdate:
		return ident.IsAdmin() || ident.IsSelf(ownerID)
	case OpCardDelete, OpCardSetActivity:
		return ident.IsAdmin()
	default:
		return false
	}
}
