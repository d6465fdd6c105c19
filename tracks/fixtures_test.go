package tracks

import (
	"errors"
	"testing"
)

func videoFormat(id string, width, height int) Format {
	f := UnknownFormat()
	f.ID = id
	f.SampleMIME = "video/avc"
	f.ContainerMIME = "video/mp4"
	f.Codecs = "avc1.64001f"
	f.Width = width
	f.Height = height
	f.FrameRate = 29.97
	return f
}

func audioFormat(id, language string) Format {
	f := UnknownFormat()
	f.ID = id
	f.SampleMIME = "audio/mp4a-latm"
	f.Language = language
	f.Channels = 2
	f.SampleRate = 48000
	return f
}

func mustTrackGroup(t *testing.T, id string, formats ...Format) TrackGroup {
	t.Helper()
	tg, err := NewTrackGroup(id, formats...)
	if err != nil {
		t.Fatalf("NewTrackGroup(%q): %v", id, err)
	}
	return tg
}

func mustGroup(t *testing.T, tg TrackGroup, adaptive bool, support []FormatSupport, selected []bool) Group {
	t.Helper()
	g, err := NewGroup(tg, adaptive, support, selected)
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	return g
}

func expectIndexPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("%s: expected panic with ErrIndexOutOfRange, got %v", name, r)
		}
		var ie *IndexError
		if ok && !errors.As(err, &ie) {
			t.Errorf("%s: panic value is not an *IndexError: %T", name, r)
		}
	}()
	fn()
}
