package store

import "fmt"

// PrincipalKind identifies the kind of principal an ACL entry binds.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalGroup PrincipalKind = "group"
	PrincipalMask  PrincipalKind = "mask"
	PrincipalOther PrincipalKind = "other"
)

// Permissions is a POSIX-style read/write/execute triplet.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// FullPermissions grants read, write and execute.
var FullPermissions = Permissions{Read: true, Write: true, Execute: true}

// String renders the triplet in symbolic form, e.g. "rwx" or "r--".
func (p Permissions) String() string {
	b := []byte("---")
	if p.Read {
		b[0] = 'r'
	}
	if p.Write {
		b[1] = 'w'
	}
	if p.Execute {
		b[2] = 'x'
	}
	return string(b)
}

// ParsePermissions parses a symbolic triplet such as "rwx" or "r-x".
func ParsePermissions(s string) (Permissions, error) {
	if len(s) != 3 {
		return Permissions{}, fmt.Errorf("invalid permission triplet %q", s)
	}

	var p Permissions
	switch s[0] {
	case 'r':
		p.Read = true
	case '-':
	default:
		return Permissions{}, fmt.Errorf("invalid read flag in %q", s)
	}
	switch s[1] {
	case 'w':
		p.Write = true
	case '-':
	default:
		return Permissions{}, fmt.Errorf("invalid write flag in %q", s)
	}
	switch s[2] {
	case 'x':
		p.Execute = true
	case '-':
	default:
		return Permissions{}, fmt.Errorf("invalid execute flag in %q", s)
	}

	return p, nil
}

// AccessControlEntry is a single access rule on a path.
//
// DefaultScope marks entries inherited by future children of a directory
// rather than applying to the directory itself. The catalog treats only
// non-default user entries as direct access grants.
type AccessControlEntry struct {
	Kind         PrincipalKind
	EntityID     string
	Permissions  Permissions
	DefaultScope bool
}
