package tracks

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go2tv.app/trackstate/bundle"
)

// NoValue marks a numeric Format attribute as unknown.
const NoValue = -1

// Format describes one track's media. It is a plain comparable value.
type Format struct {
	ID            string
	Label         string
	Language      string
	ContainerMIME string
	SampleMIME    string
	Codecs        string
	Bitrate       int
	Width         int
	Height        int
	FrameRate     float64
	Channels      int
	SampleRate    int
}

// UnknownFormat returns a Format whose numeric attributes are all NoValue.
func UnknownFormat() Format {
	return Format{
		Bitrate:    NoValue,
		Width:      NoValue,
		Height:     NoValue,
		FrameRate:  NoValue,
		Channels:   NoValue,
		SampleRate: NoValue,
	}
}

// Type is the track type implied by SampleMIME, falling back to
// ContainerMIME when the sample type is unknown.
func (f Format) Type() TrackType {
	if t := TrackTypeForMIME(f.SampleMIME); t != TrackTypeUnknown {
		return t
	}
	return TrackTypeForMIME(f.ContainerMIME)
}

func (f Format) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "id=%s, mime=%s", f.ID, f.SampleMIME)
	if f.Codecs != "" {
		fmt.Fprintf(&sb, ", codecs=%s", f.Codecs)
	}
	if f.Bitrate > 0 {
		fmt.Fprintf(&sb, ", bitrate=%d", f.Bitrate)
	}
	if f.Width > 0 && f.Height > 0 {
		fmt.Fprintf(&sb, ", res=%dx%d", f.Width, f.Height)
	}
	if f.FrameRate > 0 {
		fmt.Fprintf(&sb, ", fps=%.3f", f.FrameRate)
	}
	if f.Channels > 0 {
		fmt.Fprintf(&sb, ", channels=%d", f.Channels)
	}
	if f.SampleRate > 0 {
		fmt.Fprintf(&sb, ", sample_rate=%d", f.SampleRate)
	}
	if f.Language != "" {
		fmt.Fprintf(&sb, ", language=%s", f.Language)
	}
	if f.Label != "" {
		fmt.Fprintf(&sb, ", label=%s", f.Label)
	}
	return sb.String()
}

// finite reports whether FrameRate is a real number. NaN breaks equality
// and neither NaN nor Inf has a JSON encoding.
func (f Format) finite() bool {
	return !math.IsNaN(f.FrameRate) && !math.IsInf(f.FrameRate, 0)
}

func (f Format) hashInto(h hasher) {
	h.str(f.ID)
	h.str(f.Label)
	h.str(f.Language)
	h.str(f.ContainerMIME)
	h.str(f.SampleMIME)
	h.str(f.Codecs)
	h.int(f.Bitrate)
	h.int(f.Width)
	h.int(f.Height)
	h.float(f.FrameRate)
	h.int(f.Channels)
	h.int(f.SampleRate)
}

const (
	formatFieldID = iota
	formatFieldLabel
	formatFieldLanguage
	formatFieldContainerMIME
	formatFieldSampleMIME
	formatFieldCodecs
	formatFieldBitrate
	formatFieldWidth
	formatFieldHeight
	formatFieldFrameRate
	formatFieldChannels
	formatFieldSampleRate
)

// ToBundle encodes every attribute of f.
func (f Format) ToBundle() bundle.Bundle {
	b := bundle.New()
	b.PutString(formatFieldID, f.ID)
	b.PutString(formatFieldLabel, f.Label)
	b.PutString(formatFieldLanguage, f.Language)
	b.PutString(formatFieldContainerMIME, f.ContainerMIME)
	b.PutString(formatFieldSampleMIME, f.SampleMIME)
	b.PutString(formatFieldCodecs, f.Codecs)
	b.PutInt(formatFieldBitrate, f.Bitrate)
	b.PutInt(formatFieldWidth, f.Width)
	b.PutInt(formatFieldHeight, f.Height)
	b.PutFloat(formatFieldFrameRate, f.FrameRate)
	b.PutInt(formatFieldChannels, f.Channels)
	b.PutInt(formatFieldSampleRate, f.SampleRate)
	return b
}

// FormatFromBundle decodes a Format. Absent strings are empty and absent
// numbers are NoValue.
func FormatFromBundle(b bundle.Bundle) (Format, error) {
	f := UnknownFormat()
	r := fieldReader{b: b}
	r.str(formatFieldID, &f.ID)
	r.str(formatFieldLabel, &f.Label)
	r.str(formatFieldLanguage, &f.Language)
	r.str(formatFieldContainerMIME, &f.ContainerMIME)
	r.str(formatFieldSampleMIME, &f.SampleMIME)
	r.str(formatFieldCodecs, &f.Codecs)
	r.integer(formatFieldBitrate, &f.Bitrate)
	r.integer(formatFieldWidth, &f.Width)
	r.integer(formatFieldHeight, &f.Height)
	r.float(formatFieldFrameRate, &f.FrameRate)
	r.integer(formatFieldChannels, &f.Channels)
	r.integer(formatFieldSampleRate, &f.SampleRate)
	if r.err != nil {
		return Format{}, errors.Wrap(r.err, "FormatFromBundle")
	}
	if !f.finite() {
		return Format{}, errors.Wrapf(ErrInvalidArgument, "FormatFromBundle: frame rate %v", f.FrameRate)
	}
	return f, nil
}
