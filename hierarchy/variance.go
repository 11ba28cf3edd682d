package hierarchy

import (
	"strings"
)

// Variance relates the subtyping of a parameter to the subtyping of the type it belongs to
type Variance uint8

const (
	// Invariant parameters must be the same type on both sides
	Invariant Variance = iota
	// Covariant parameters preserve the direction of subtyping
	Covariant
	// Contravariant parameters reverse the direction of subtyping
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "inv"
	case Covariant:
		return "co"
	case Contravariant:
		return "contra"
	default:
		return "invalid"
	}
}

// ParseVariance reads a variance by its prefix, ignoring case: 'inv*', 'contra*' or 'co*'
func ParseVariance(s string) (Variance, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	// contra has to be checked before co
	switch {
	case strings.HasPrefix(lower, "inv"):
		return Invariant, true
	case strings.HasPrefix(lower, "contra"):
		return Contravariant, true
	case strings.HasPrefix(lower, "co"):
		return Covariant, true
	}
	return Invariant, false
}
