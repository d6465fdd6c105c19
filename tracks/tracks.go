// Package tracks holds an immutable snapshot of a player's track state:
// the groups of alternative tracks, how well each track is supported, and
// which tracks are selected.
package tracks

import (
	"slices"
	"strings"
)

// Tracks is the ordered list of Groups of one playback session.
type Tracks struct {
	groups []Group
}

// Empty holds no groups.
var Empty = Tracks{}

// New copies groups into a Tracks value.
func New(groups []Group) Tracks {
	return Tracks{groups: slices.Clone(groups)}
}

// Groups returns a copy of the group list.
func (t Tracks) Groups() []Group {
	return slices.Clone(t.groups)
}

func (t Tracks) Len() int {
	return len(t.groups)
}

// Group returns group i. It panics with an *IndexError if i is out of range.
func (t Tracks) Group(i int) Group {
	checkIndex(i, len(t.groups))
	return t.groups[i]
}

func (t Tracks) IsEmpty() bool {
	return len(t.groups) == 0
}

// ContainsType reports whether any group has the given type.
func (t Tracks) ContainsType(trackType TrackType) bool {
	for _, g := range t.groups {
		if g.Type() == trackType {
			return true
		}
	}
	return false
}

// IsTypeSupported reports whether some group of the given type has a
// supported track.
func (t Tracks) IsTypeSupported(trackType TrackType, allowExceedsCapabilities bool) bool {
	for _, g := range t.groups {
		if g.Type() == trackType && g.IsSupported(allowExceedsCapabilities) {
			return true
		}
	}
	return false
}

// IsTypeSupportedOrEmpty reports whether the type is absent or supported.
//
// Deprecated: absent and supported are indistinguishable here. Use
// ContainsType and IsTypeSupported.
func (t Tracks) IsTypeSupportedOrEmpty(trackType TrackType, allowExceedsCapabilities bool) bool {
	return !t.ContainsType(trackType) || t.IsTypeSupported(trackType, allowExceedsCapabilities)
}

// IsTypeSelected reports whether some group of the given type has a
// selected track.
func (t Tracks) IsTypeSelected(trackType TrackType) bool {
	for _, g := range t.groups {
		if g.IsSelected() && g.Type() == trackType {
			return true
		}
	}
	return false
}

func (t Tracks) Equal(other Tracks) bool {
	return slices.EqualFunc(t.groups, other.groups, Group.Equal)
}

func (t Tracks) Hash() uint64 {
	h := newHasher()
	h.int(len(t.groups))
	for _, g := range t.groups {
		g.hashInto(h)
	}
	return h.sum()
}

func (t Tracks) String() string {
	parts := make([]string, len(t.groups))
	for i, g := range t.groups {
		parts[i] = g.String()
	}
	return "Tracks[" + strings.Join(parts, ", ") + "]"
}
