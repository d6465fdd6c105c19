package tracks

import (
	"github.com/pkg/errors"
	"go2tv.app/trackstate/bundle"
)

// Group record fields. Field 2 is retired: old payloads may still carry
// it, so it is never read and must not be reassigned.
const (
	groupFieldTrackGroup        = 0
	groupFieldTrackSupport      = 1
	groupFieldRetired           = 2
	groupFieldTrackSelected     = 3
	groupFieldAdaptiveSupported = 4
)

const tracksFieldGroups = 0

// ToBundle encodes every field of g, default-valued or not.
func (g Group) ToBundle() bundle.Bundle {
	support := make([]int, len(g.trackSupport))
	for i, s := range g.trackSupport {
		support[i] = int(s)
	}

	b := bundle.New()
	b.PutBundle(groupFieldTrackGroup, g.trackGroup.ToBundle())
	b.PutIntSlice(groupFieldTrackSupport, support)
	b.PutBoolSlice(groupFieldTrackSelected, g.trackSelected)
	b.PutBool(groupFieldAdaptiveSupported, g.adaptiveSupported)
	return b
}

// GroupFromBundle decodes a Group. The track group is required; every
// other field falls back to its own default when absent: all tracks
// FormatUnsupportedType, none selected, adaptive off.
func GroupFromBundle(b bundle.Bundle) (Group, error) {
	tgb, ok, err := b.Sub(groupFieldTrackGroup)
	if err != nil {
		return Group{}, errors.Wrap(err, "GroupFromBundle: track group")
	}
	if !ok {
		return Group{}, errors.Wrapf(ErrMissingRequiredField, "GroupFromBundle: field %s (track group)", bundle.Key(groupFieldTrackGroup))
	}

	tg, err := TrackGroupFromBundle(tgb)
	if err != nil {
		return Group{}, errors.Wrap(err, "GroupFromBundle")
	}
	n := tg.Length()

	support := make([]FormatSupport, n)
	raw, ok, err := b.IntSlice(groupFieldTrackSupport)
	if err != nil {
		return Group{}, errors.Wrap(err, "GroupFromBundle: track support")
	}
	if ok {
		support = make([]FormatSupport, len(raw))
		for i, v := range raw {
			support[i] = FormatSupport(v)
		}
	}

	selected, ok, err := b.BoolSlice(groupFieldTrackSelected)
	if err != nil {
		return Group{}, errors.Wrap(err, "GroupFromBundle: track selected")
	}
	if !ok {
		selected = make([]bool, n)
	}

	var adaptive bool
	r := fieldReader{b: b}
	r.boolean(groupFieldAdaptiveSupported, &adaptive)
	if r.err != nil {
		return Group{}, errors.Wrap(r.err, "GroupFromBundle: adaptive supported")
	}

	g, err := NewGroup(tg, adaptive, support, selected)
	if err != nil {
		return Group{}, errors.Wrap(err, "GroupFromBundle")
	}
	return g, nil
}

// ToBundle encodes the group list in order.
func (t Tracks) ToBundle() bundle.Bundle {
	groups := make([]bundle.Bundle, len(t.groups))
	for i, g := range t.groups {
		groups[i] = g.ToBundle()
	}

	b := bundle.New()
	b.PutBundleSlice(tracksFieldGroups, groups)
	return b
}

// FromBundle decodes a Tracks value. A record without groups decodes to
// an empty Tracks. Any malformed group fails the whole decode.
func FromBundle(b bundle.Bundle) (Tracks, error) {
	raw, ok, err := b.SubSlice(tracksFieldGroups)
	if err != nil {
		return Tracks{}, errors.Wrap(err, "FromBundle: groups")
	}
	if !ok {
		return Empty, nil
	}

	groups := make([]Group, 0, len(raw))
	for i, gb := range raw {
		g, err := GroupFromBundle(gb)
		if err != nil {
			return Tracks{}, errors.Wrapf(err, "FromBundle: group %d", i)
		}
		groups = append(groups, g)
	}

	return Tracks{groups: groups}, nil
}

// Encode renders t in the JSON wire form of package bundle.
func Encode(t Tracks) ([]byte, error) {
	return bundle.Marshal(t.ToBundle())
}

// Decode parses the output of Encode.
func Decode(data []byte) (Tracks, error) {
	b, err := bundle.Unmarshal(data)
	if err != nil {
		return Tracks{}, errors.Wrap(err, "Decode")
	}
	return FromBundle(b)
}
