// Package capabilities rates tracks against what a cast receiver can play
// and picks the tracks a session should start with.
package capabilities

import (
	"strings"

	"github.com/pkg/errors"
	"go2tv.app/trackstate/tracks"
)

// ErrUnknownProfile is returned by ProfileByName.
var ErrUnknownProfile = errors.New("capabilities: unknown profile")

// Profile lists the sample and container MIME types a receiver handles and
// the limits it can render at full quality. Zero limits are unbounded.
type Profile struct {
	Name         string
	Video        map[string]bool
	Audio        map[string]bool
	Text         map[string]bool
	Containers   map[string]bool
	MaxWidth     int
	MaxHeight    int
	MaxFrameRate float64
	MaxChannels  int
}

// Chromecast is the default media receiver profile.
func Chromecast() Profile {
	return Profile{
		Name: "chromecast",
		Video: map[string]bool{
			"video/avc":           true,
			"video/hevc":          true,
			"video/x-vnd.on2.vp8": true,
			"video/x-vnd.on2.vp9": true,
			"video/av01":          true,
		},
		Audio: map[string]bool{
			"audio/mp4a-latm": true,
			"audio/mpeg":      true,
			"audio/vorbis":    true,
			"audio/opus":      true,
			"audio/flac":      true,
		},
		// SRT is converted to WebVTT before casting.
		Text: map[string]bool{
			"text/vtt":             true,
			"application/x-subrip": true,
		},
		Containers: map[string]bool{
			"video/mp4":        true,
			"video/quicktime":  true,
			"audio/mp4":        true,
			"audio/x-m4a":      true,
			"video/webm":       true,
			"audio/webm":       true,
			"video/x-matroska": true,
			"audio/mpeg":       true,
			"audio/ogg":        true,
			"audio/x-flac":     true,
		},
		MaxWidth:     1920,
		MaxHeight:    1080,
		MaxFrameRate: 60,
		MaxChannels:  2,
	}
}

// DLNA is a conservative profile for generic DLNA renderers.
func DLNA() Profile {
	return Profile{
		Name: "dlna",
		Video: map[string]bool{
			"video/avc":     true,
			"video/mpeg2":   true,
			"video/mp4v-es": true,
		},
		Audio: map[string]bool{
			"audio/mp4a-latm": true,
			"audio/mpeg":      true,
			"audio/ac3":       true,
		},
		Text: map[string]bool{
			"application/x-subrip": true,
		},
		Containers: map[string]bool{
			"video/mp4":        true,
			"video/quicktime":  true,
			"video/x-matroska": true,
			"video/mpeg":       true,
			"video/x-msvideo":  true,
			"audio/mpeg":       true,
			"audio/mp4":        true,
		},
		MaxWidth:     1920,
		MaxHeight:    1080,
		MaxFrameRate: 60,
		MaxChannels:  6,
	}
}

// ProfileByName returns a built-in profile.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "chromecast":
		return Chromecast(), nil
	case "dlna":
		return DLNA(), nil
	}
	return Profile{}, errors.Wrapf(ErrUnknownProfile, "ProfileByName: %q", name)
}

// Support rates a single format. The type is checked first, then the
// sample and container MIME types, then the rendering limits.
// FormatUnsupportedDRM is never produced; protection is not probed.
func (p Profile) Support(f tracks.Format) tracks.FormatSupport {
	var handled map[string]bool
	switch f.Type() {
	case tracks.TrackTypeVideo:
		handled = p.Video
	case tracks.TrackTypeAudio:
		handled = p.Audio
	case tracks.TrackTypeText:
		handled = p.Text
	}

	if len(handled) == 0 {
		return tracks.FormatUnsupportedType
	}

	if !handled[f.SampleMIME] {
		return tracks.FormatUnsupportedSubtype
	}

	if f.ContainerMIME != "" && len(p.Containers) > 0 && !p.Containers[f.ContainerMIME] {
		return tracks.FormatUnsupportedSubtype
	}

	if p.exceeds(f) {
		return tracks.FormatExceedsCapabilities
	}

	return tracks.FormatHandled
}

func (p Profile) exceeds(f tracks.Format) bool {
	switch f.Type() {
	case tracks.TrackTypeVideo:
		if p.MaxWidth > 0 && f.Width > p.MaxWidth {
			return true
		}
		if p.MaxHeight > 0 && f.Height > p.MaxHeight {
			return true
		}
		if p.MaxFrameRate > 0 && f.FrameRate > p.MaxFrameRate {
			return true
		}
	case tracks.TrackTypeAudio:
		if p.MaxChannels > 0 && f.Channels > p.MaxChannels {
			return true
		}
	}
	return false
}
