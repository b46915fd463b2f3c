package domain

// UserState is the caller's standing as derived from their profile.
type UserState interface {
	userState()
}

type Active struct {
	Role Role
}

type Pending struct{}

type Suspended struct{}

type Unauthenticated struct{}

func (Active) userState()          {}
func (Pending) userState()         {}
func (Suspended) userState()       {}
func (Unauthenticated) userState() {}

// StateOf maps a profile to its state. A nil profile is Unauthenticated and an
// unrecognised status is treated as Suspended.
func StateOf(p *Profile) UserState {
	if p == nil {
		return Unauthenticated{}
	}
	switch p.Status {
	case StatusActive:
		return Active{Role: p.Role}
	case StatusPending:
		return Pending{}
	default:
		return Suspended{}
	}
}

type Access int

const (
	AccessGranted Access = iota
	AccessSignIn
	AccessAwaitingApproval
	AccessBlocked
	AccessForbidden
)

func (a Access) String() string {
	switch a {
	case AccessGranted:
		return "granted"
	case AccessSignIn:
		return "sign_in_required"
	case AccessAwaitingApproval:
		return "awaiting_approval"
	case AccessBlocked:
		return "account_suspended"
	case AccessForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Admit decides whether a caller in state may reach a surface that requires
// role. An empty role admits any active user.
func Admit(state UserState, role Role) Access {
	switch s := state.(type) {
	case Active:
		if role == RoleAdmin && s.Role != RoleAdmin {
			return AccessForbidden
		}
		return AccessGranted
	case Pending:
		return AccessAwaitingApproval
	case Suspended:
		return AccessBlocked
	case Unauthenticated:
		return AccessSignIn
	default:
		return AccessSignIn
	}
}

// StateName is the wire name of a state, used by /me and client routing.
func StateName(state UserState) string {
	switch s := state.(type) {
	case Active:
		if s.Role == RoleAdmin {
			return "active_admin"
		}
		return "active"
	case Pending:
		return "pending"
	case Suspended:
		return "suspended"
	default:
		return "unauthenticated"
	}
}
