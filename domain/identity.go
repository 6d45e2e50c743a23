package domain

// IdentityKind distinguishes the three caller variants the gateway can hand us.
type IdentityKind string

const (
	IdentityAnonymous IdentityKind = "anonymous"
	IdentitySubject   IdentityKind = "subject"
	IdentityService   IdentityKind = "service"
)

// Role of an authenticated subject.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Identity is the resolved caller of an operation. It is always passed
// explicitly into use cases, never read from ambient state.
type Identity struct {
	Kind      IdentityKind
	SubjectID int64
	Role      Role
}

// Anonymous is the identity of a request with no resolvable credentials.
var Anonymous = Identity{Kind: IdentityAnonymous}

// NewSubject builds an end-user identity.
func NewSubject(id int64, role Role) Identity {
	return Identity{Kind: IdentitySubject, SubjectID: id, Role: role}
}

// NewService builds a trusted inter-service identity.
func NewService() Identity {
	return Identity{Kind: IdentityService}
}

func (i Identity) IsAnonymous() bool { return i.Kind == IdentityAnonymous || i.Kind == "" }

func (i Identity) IsService() bool { return i.Kind == IdentityService }

func (i Identity) IsAdmin() bool { return i.Kind == IdentitySubject && i.Role == RoleAdmin }

// IsSelf reports whether the identity is the subject owning the given id.
func (i Identity) IsSelf(ownerID int64) bool {
	return i.Kind == IdentitySubject && i.SubjectID == ownerID
}
