package model

import (
	"fmt"
	"strings"
)

// Enum holds the wire names of a closed uint8 enumeration. The value is the index into Names.
type Enum[T ~uint8] struct {
	Kind  string
	Names []string
}

// Name returns the wire name of v, or a diagnostic placeholder for out-of-range values.
func (e Enum[T]) Name(v T) string {
	if int(v) < len(e.Names) {
		return e.Names[v]
	}
	return fmt.Sprintf("%s(%d)", e.Kind, v)
}

// Parse resolves a wire name. Matching ignores case and surrounding space.
func (e Enum[T]) Parse(s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range e.Names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", e.Kind, s)
}

// Marshal encodes v as text, rejecting out-of-range values.
func (e Enum[T]) Marshal(v T) ([]byte, error) {
	if int(v) >= len(e.Names) {
		return nil, fmt.Errorf("invalid %s %d", e.Kind, v)
	}
	return []byte(e.Names[v]), nil
}

// Unmarshal decodes text into dst.
func (e Enum[T]) Unmarshal(dst *T, b []byte) error {
	v, err := e.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// ArtworkStatus tracks the customer's artwork for a line item.
type ArtworkStatus uint8

const (
	ArtworkPending ArtworkStatus = iota
	ArtworkUploaded
	ArtworkApproved
)

var artworkStatuses = Enum[ArtworkStatus]{Kind: "artwork status", Names: []string{"pending", "uploaded", "approved"}}

func (s ArtworkStatus) String() string                { return artworkStatuses.Name(s) }
func (s ArtworkStatus) MarshalText() ([]byte, error)  { return artworkStatuses.Marshal(s) }
func (s *ArtworkStatus) UnmarshalText(b []byte) error { return artworkStatuses.Unmarshal(s, b) }

// ActorRole identifies who performed a proof or order action.
type ActorRole uint8

const (
	RoleCustomer ActorRole = iota
	RoleAdmin
)

var actorRoles = Enum[ActorRole]{Kind: "actor role", Names: []string{"customer", "admin"}}

// ParseActorRole parses "customer" or "admin".
func ParseActorRole(s string) (ActorRole, error) { return actorRoles.Parse(s) }

func (r ActorRole) String() string                { return actorRoles.Name(r) }
func (r ActorRole) MarshalText() ([]byte, error)  { return actorRoles.Marshal(r) }
func (r *ActorRole) UnmarshalText(b []byte) error { return actorRoles.Unmarshal(r, b) }
