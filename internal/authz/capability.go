// Package authz resolves the capability of the caller and gates record
// operations on it.
package authz

import "strings"

// Capability is a permission level. Capabilities are ordered: a principal
// holding a capability also holds every lower one.
type Capability int

const (
	Anonymous Capability = iota
	User
	Admin
)

func (c Capability) String() string {
	switch c {
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Allows reports whether c covers required.
func (c Capability) Allows(required Capability) bool {
	return c >= required
}

// ParseRole maps a role name to its capability. The "ROLE_" spellings issued
// by Spring-style identity providers are accepted.
func ParseRole(role string) (Capability, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.ToUpper(role), "ROLE_")) {
	case "user":
		return User, true
	case "admin":
		return Admin, true
	}
	return Anonymous, false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject    string
	Capability Capability
}

// AnonymousPrincipal is the principal of a request without valid credentials.
var AnonymousPrincipal = Principal{Capability: Anonymous}

// PrincipalFromRoles returns the principal for subject holding the highest
// capability among roles. Unknown roles are ignored.
func PrincipalFromRoles(subject string, roles []string) Principal {
	p := Principal{Subject: subject}
	for _, r := range roles {
		if c, ok := ParseRole(r); ok && c > p.Capability {
			p.Capability = c
		}
	}
	return p
}
