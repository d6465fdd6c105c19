package tracks

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go2tv.app/trackstate/bundle"
)

// TrackGroup is an immutable set of mutually alternative tracks, such as
// the renditions of one audio stream. It carries no runtime state, which
// makes it the stable key for a group across snapshots.
type TrackGroup struct {
	id      string
	typ     TrackType
	formats []Format
}

// NewTrackGroup copies formats into a new TrackGroup. The group type is
// the type of the first format.
func NewTrackGroup(id string, formats ...Format) (TrackGroup, error) {
	if len(formats) == 0 {
		return TrackGroup{}, errors.Wrap(ErrInvalidArgument, "NewTrackGroup: a track group needs at least one format")
	}
	for i, f := range formats {
		if !f.finite() {
			return TrackGroup{}, errors.Wrapf(ErrInvalidArgument, "NewTrackGroup: format %d has frame rate %v", i, f.FrameRate)
		}
	}

	return TrackGroup{
		id:      id,
		typ:     formats[0].Type(),
		formats: slices.Clone(formats),
	}, nil
}

func (tg TrackGroup) ID() string {
	return tg.id
}

func (tg TrackGroup) Type() TrackType {
	return tg.typ
}

// Length is the number of tracks in the group.
func (tg TrackGroup) Length() int {
	return len(tg.formats)
}

// Format returns the format of track i. It panics with an *IndexError if
// i is out of range.
func (tg TrackGroup) Format(i int) Format {
	checkIndex(i, len(tg.formats))
	return tg.formats[i]
}

// Formats returns a copy of the track formats.
func (tg TrackGroup) Formats() []Format {
	return slices.Clone(tg.formats)
}

// IndexOf returns the index of the first track with format f, or -1.
func (tg TrackGroup) IndexOf(f Format) int {
	return slices.Index(tg.formats, f)
}

func (tg TrackGroup) Equal(other TrackGroup) bool {
	return tg.id == other.id &&
		tg.typ == other.typ &&
		slices.Equal(tg.formats, other.formats)
}

func (tg TrackGroup) Hash() uint64 {
	h := newHasher()
	tg.hashInto(h)
	return h.sum()
}

func (tg TrackGroup) hashInto(h hasher) {
	h.str(tg.id)
	h.int(int(tg.typ))
	h.int(len(tg.formats))
	for _, f := range tg.formats {
		f.hashInto(h)
	}
}

func (tg TrackGroup) String() string {
	parts := make([]string, len(tg.formats))
	for i, f := range tg.formats {
		parts[i] = "[" + f.String() + "]"
	}
	return fmt.Sprintf("TrackGroup{id=%s, type=%s, formats=%s}", tg.id, tg.typ, strings.Join(parts, " "))
}

const (
	trackGroupFieldFormats = 0
	trackGroupFieldID      = 1
)

func (tg TrackGroup) ToBundle() bundle.Bundle {
	formats := make([]bundle.Bundle, len(tg.formats))
	for i, f := range tg.formats {
		formats[i] = f.ToBundle()
	}

	b := bundle.New()
	b.PutBundleSlice(trackGroupFieldFormats, formats)
	b.PutString(trackGroupFieldID, tg.id)
	return b
}

// TrackGroupFromBundle decodes a TrackGroup. A record without formats
// cannot describe a group and fails with ErrInvalidArgument.
func TrackGroupFromBundle(b bundle.Bundle) (TrackGroup, error) {
	raw, _, err := b.SubSlice(trackGroupFieldFormats)
	if err != nil {
		return TrackGroup{}, errors.Wrap(err, "TrackGroupFromBundle: formats")
	}

	formats := make([]Format, 0, len(raw))
	for i, fb := range raw {
		f, err := FormatFromBundle(fb)
		if err != nil {
			return TrackGroup{}, errors.Wrapf(err, "TrackGroupFromBundle: format %d", i)
		}
		formats = append(formats, f)
	}

	var id string
	r := fieldReader{b: b}
	r.str(trackGroupFieldID, &id)
	if r.err != nil {
		return TrackGroup{}, errors.Wrap(r.err, "TrackGroupFromBundle: id")
	}

	tg, err := NewTrackGroup(id, formats...)
	if err != nil {
		return TrackGroup{}, errors.Wrap(err, "TrackGroupFromBundle")
	}
	return tg, nil
}
