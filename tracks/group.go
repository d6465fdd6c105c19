package tracks

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Group is a TrackGroup annotated with runtime state: the support level
// and selection flag of every track, and whether adaptive selection across
// its tracks is possible.
//
// A Group is immutable. Because equality includes the runtime state, a
// Group is not a stable map key across snapshots; key on TrackGroup.
type Group struct {
	trackGroup        TrackGroup
	adaptiveSupported bool
	trackSupport      []FormatSupport
	trackSelected     []bool
}

// NewGroup copies trackSupport and trackSelected, both of which must have
// one entry per track in tg. adaptiveSupported is forced to false for
// single-track groups.
func NewGroup(tg TrackGroup, adaptiveSupported bool, trackSupport []FormatSupport, trackSelected []bool) (Group, error) {
	n := tg.Length()
	if n == 0 {
		return Group{}, errors.Wrap(ErrInvalidArgument, "NewGroup: track group has no tracks")
	}
	if len(trackSupport) != n || len(trackSelected) != n {
		return Group{}, errors.Wrapf(ErrInvalidArgument,
			"NewGroup: track group has %d tracks, got %d support levels and %d selection flags",
			n, len(trackSupport), len(trackSelected))
	}

	return Group{
		trackGroup:        tg,
		adaptiveSupported: adaptiveSupported && n > 1,
		trackSupport:      slices.Clone(trackSupport),
		trackSelected:     slices.Clone(trackSelected),
	}, nil
}

// Length is the number of tracks in the group.
func (g Group) Length() int {
	return g.trackGroup.Length()
}

func (g Group) TrackGroup() TrackGroup {
	return g.trackGroup
}

func (g Group) Type() TrackType {
	return g.trackGroup.Type()
}

// TrackFormat panics with an *IndexError if i is out of range, as do all
// per-track accessors.
func (g Group) TrackFormat(i int) Format {
	return g.trackGroup.Format(i)
}

func (g Group) TrackSupport(i int) FormatSupport {
	checkIndex(i, len(g.trackSupport))
	return g.trackSupport[i]
}

// IsTrackSupported reports whether track i is fully handled, or, when
// allowExceedsCapabilities is set, handled beyond the advertised device
// capabilities.
func (g Group) IsTrackSupported(i int, allowExceedsCapabilities bool) bool {
	s := g.TrackSupport(i)
	return s == FormatHandled || (allowExceedsCapabilities && s == FormatExceedsCapabilities)
}

// IsSupported reports whether at least one track is supported.
func (g Group) IsSupported(allowExceedsCapabilities bool) bool {
	for i := range g.trackSupport {
		if g.IsTrackSupported(i, allowExceedsCapabilities) {
			return true
		}
	}
	return false
}

// IsTrackSelected reports whether track i is selected. Several tracks of
// one group may be selected at once for adaptive playback.
func (g Group) IsTrackSelected(i int) bool {
	checkIndex(i, len(g.trackSelected))
	return g.trackSelected[i]
}

// IsSelected reports whether at least one track is selected.
func (g Group) IsSelected() bool {
	return slices.Contains(g.trackSelected, true)
}

func (g Group) IsAdaptiveSupported() bool {
	return g.adaptiveSupported
}

func (g Group) Equal(other Group) bool {
	return g.adaptiveSupported == other.adaptiveSupported &&
		g.trackGroup.Equal(other.trackGroup) &&
		slices.Equal(g.trackSupport, other.trackSupport) &&
		slices.Equal(g.trackSelected, other.trackSelected)
}

func (g Group) Hash() uint64 {
	h := newHasher()
	g.hashInto(h)
	return h.sum()
}

func (g Group) hashInto(h hasher) {
	g.trackGroup.hashInto(h)
	h.bool(g.adaptiveSupported)
	for _, s := range g.trackSupport {
		h.int(int(s))
	}
	for _, sel := range g.trackSelected {
		h.bool(sel)
	}
}

func (g Group) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Group{id=%s, type=%s, adaptive=%t, tracks=[", g.trackGroup.ID(), g.Type(), g.adaptiveSupported)
	for i, s := range g.trackSupport {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s.String())
		if g.trackSelected[i] {
			sb.WriteString("*")
		}
	}
	sb.WriteString("]}")
	return sb.String()
}
