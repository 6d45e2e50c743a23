package usecase

import (
	"context"
	"strconv"

	"github.com/fastygo/user-service/domain"
)

const (
	EntityUser = "user"
	EntityCard = "card"
)

// AuditEntry describes one successful mutation for the audit trail.
type AuditEntry struct {
	Actor     string `json:"actor"`
	Operation string `json:"operation"`
	Entity    string `json:"entity"`
	EntityID  int64  `json:"entity_id"`
}

// AuditRecorder abstracts the audit trail so use cases stay storage-agnostic.
// Recording is best-effort; use cases log failures and continue.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// ActorLabel renders an identity for audit entries.
func ActorLabel(ident domain.Identity) string {
	switch ident.Kind {
	case domain.IdentityService:
		return "service"
	case domain.IdentitySubject:
		prefix := "user:"
		if ident.Role == domain.RoleAdmin {
			prefix = "admin:"
		}
		return prefix + strconv.FormatInt(ident.SubjectID, 10)
	default:
		return "anonymous"
	}
}
