package authz

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// scopeWireUnrestricted is the JSON form of the unrestricted scope.
const scopeWireUnrestricted = `"*"`

// Scope restricts a grant to a subset of contexts, expressed as a mapping
// from dimension name to the set of allowed values. The zero value is the
// empty scope (no dimensions). The distinguished unrestricted scope covers
// every requested scope.
type Scope struct {
	unrestricted bool
	dims         map[string][]string
}

// Unrestricted returns the scope that covers everything.
func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// NewScope builds a scope from dimension value sets. Values are copied,
// deduplicated and sorted so scopes compare canonically. Dimensions with
// empty value sets are dropped.
func NewScope(dims map[string][]string) Scope {
	if len(dims) == 0 {
		return Scope{}
	}
	normalized := make(map[string][]string, len(dims))
	for dim, values := range dims {
		dim = strings.TrimSpace(dim)
		if dim == "" {
			continue
		}
		seen := make(map[string]struct{}, len(values))
		var set []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			set = append(set, v)
		}
		if len(set) == 0 {
			continue
		}
		sort.Strings(set)
		normalized[dim] = set
	}
	return Scope{dims: normalized}
}

// IsUnrestricted reports whether the scope covers everything.
func (s Scope) IsUnrestricted() bool {
	return s.unrestricted
}

// IsEmpty reports whether the scope carries no dimensions and is not
// unrestricted.
func (s Scope) IsEmpty() bool {
	return !s.unrestricted && len(s.dims) == 0
}

// Dimensions returns the dimension names in sorted order.
func (s Scope) Dimensions() []string {
	if len(s.dims) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.dims))
	for dim := range s.dims {
		names = append(names, dim)
	}
	sort.Strings(names)
	return names
}

// Values returns the allowed values for a dimension.
func (s Scope) Values(dim string) []string {
	values := s.dims[dim]
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Key returns a canonical string representation used for exact-tuple
// duplicate detection. Two scopes have equal keys iff they are equal.
func (s Scope) Key() string {
	if s.unrestricted {
		return "*"
	}
	if len(s.dims) == 0 {
		return ""
	}
	var b strings.Builder
	for i, dim := range s.Dimensions() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(dim)
		b.WriteByte('=')
		b.WriteString(strings.Join(s.dims[dim], ","))
	}
	return b.String()
}

// Equal reports whether two scopes are identical.
func (s Scope) Equal(other Scope) bool {
	return s.Key() == other.Key()
}

// String renders the scope for logs and error messages.
func (s Scope) String() string {
	if s.unrestricted {
		return "unrestricted"
	}
	if len(s.dims) == 0 {
		return "empty"
	}
	return s.Key()
}

// Matches reports whether the granted scope covers the requested scope.
// The rule is requested ⊆ granted, never the reverse:
//
//   - an unrestricted granted scope covers any request;
//   - an unrestricted request is only satisfied by an unrestricted grant;
//   - every dimension named by the request must be present in the grant
//     with the requested values a subset of the granted values;
//   - dimensions absent from the request are not checked, so a scope-free
//     request is satisfied by any grant for the permission.
//
// Requested dimensions unknown to the grant fail closed.
func Matches(granted, requested Scope) bool {
	if granted.unrestricted {
		return true
	}
	if requested.unrestricted {
		return false
	}
	for dim, requestedValues := range requested.dims {
		grantedValues, ok := granted.dims[dim]
		if !ok {
			return false
		}
		if !subset(requestedValues, grantedValues) {
			return false
		}
	}
	return true
}

func subset(needles, haystack []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, v := range haystack {
		set[v] = struct{}{}
	}
	for _, v := range needles {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the unrestricted scope as "*" and any other scope as
// an object of dimension value arrays. This is the storage and wire format.
func (s Scope) MarshalJSON() ([]byte, error) {
	if s.unrestricted {
		return []byte(scopeWireUnrestricted), nil
	}
	if len(s.dims) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(s.dims)
}

// UnmarshalJSON decodes the wire format produced by MarshalJSON. A
// dimension with an empty or all-blank value set is rejected with
// ErrInvalidScope so a semantically empty scope never reaches the store.
func (s *Scope) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == scopeWireUnrestricted {
		*s = Unrestricted()
		return nil
	}
	var dims map[string][]string
	if err := json.Unmarshal(data, &dims); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}
	scope := NewScope(dims)
	for dim := range dims {
		if strings.TrimSpace(dim) == "" {
			return fmt.Errorf("%w: blank dimension name", ErrInvalidScope)
		}
		if len(scope.Values(strings.TrimSpace(dim))) == 0 {
			return fmt.Errorf("%w: empty value set for dimension %q", ErrInvalidScope, dim)
		}
	}
	*s = scope
	return nil
}
