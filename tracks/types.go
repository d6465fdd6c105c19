package tracks

import (
	"strconv"
	"strings"
)

// TrackType classifies what a track carries.
type TrackType int

const (
	TrackTypeNone         TrackType = -2
	TrackTypeUnknown      TrackType = -1
	TrackTypeDefault      TrackType = 0
	TrackTypeAudio        TrackType = 1
	TrackTypeVideo        TrackType = 2
	TrackTypeText         TrackType = 3
	TrackTypeImage        TrackType = 4
	TrackTypeMetadata     TrackType = 5
	TrackTypeCameraMotion TrackType = 6
)

func (t TrackType) String() string {
	switch t {
	case TrackTypeNone:
		return "none"
	case TrackTypeUnknown:
		return "unknown"
	case TrackTypeDefault:
		return "default"
	case TrackTypeAudio:
		return "audio"
	case TrackTypeVideo:
		return "video"
	case TrackTypeText:
		return "text"
	case TrackTypeImage:
		return "image"
	case TrackTypeMetadata:
		return "metadata"
	case TrackTypeCameraMotion:
		return "camera-motion"
	}
	return "TrackType(" + strconv.Itoa(int(t)) + ")"
}

// ParseTrackType is the inverse of TrackType.String for the named types.
func ParseTrackType(s string) (TrackType, bool) {
	for t := TrackTypeNone; t <= TrackTypeCameraMotion; t++ {
		if t.String() == strings.ToLower(s) {
			return t, true
		}
	}
	return TrackTypeUnknown, false
}

var applicationTrackTypes = map[string]TrackType{
	"application/x-subrip":         TrackTypeText,
	"application/ttml+xml":         TrackTypeText,
	"application/x-quicktime-tx3g": TrackTypeText,
	"application/x-mp4-vtt":        TrackTypeText,
	"application/x-mp4-cea-608":    TrackTypeText,
	"application/cea-608":          TrackTypeText,
	"application/cea-708":          TrackTypeText,
	"application/x-rawcc":          TrackTypeText,
	"application/vobsub":           TrackTypeText,
	"application/pgs":              TrackTypeText,
	"application/dvbsubs":          TrackTypeText,
	"application/id3":              TrackTypeMetadata,
	"application/x-emsg":           TrackTypeMetadata,
	"application/x-scte35":         TrackTypeMetadata,
	"application/x-icy":            TrackTypeMetadata,
	"application/x-camera-motion":  TrackTypeCameraMotion,
}

// TrackTypeForMIME derives the track type from a sample MIME type.
func TrackTypeForMIME(mime string) TrackType {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		return TrackTypeUnknown
	}

	top, _, _ := strings.Cut(mime, "/")
	switch top {
	case "audio":
		return TrackTypeAudio
	case "video":
		return TrackTypeVideo
	case "text":
		return TrackTypeText
	case "image":
		return TrackTypeImage
	}

	if t, ok := applicationTrackTypes[mime]; ok {
		return t
	}
	return TrackTypeUnknown
}

// FormatSupport is the level to which a player can handle a track.
// Values are stable; they are what the wire form carries.
type FormatSupport int

const (
	FormatUnsupportedType FormatSupport = iota
	FormatUnsupportedSubtype
	FormatUnsupportedDRM
	FormatExceedsCapabilities
	FormatHandled
)

func (s FormatSupport) String() string {
	switch s {
	case FormatHandled:
		return "HANDLED"
	case FormatExceedsCapabilities:
		return "EXCEEDS_CAPABILITIES"
	case FormatUnsupportedDRM:
		return "UNSUPPORTED_DRM"
	case FormatUnsupportedSubtype:
		return "UNSUPPORTED_SUBTYPE"
	case FormatUnsupportedType:
		return "UNSUPPORTED_TYPE"
	}
	return "FormatSupport(" + strconv.Itoa(int(s)) + ")"
}
