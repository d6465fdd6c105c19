package tracks

import (
	"errors"
	"testing"
)

func TestNewGroupLengthInvariant(t *testing.T) {
	tg := mustTrackGroup(t, "0", videoFormat("a", 640, 360), videoFormat("b", 1280, 720))

	tests := []struct {
		name     string
		support  []FormatSupport
		selected []bool
	}{
		{"short support", []FormatSupport{FormatHandled}, []bool{false, false}},
		{"short selection", []FormatSupport{FormatHandled, FormatHandled}, []bool{true}},
		{"long support", []FormatSupport{FormatHandled, FormatHandled, FormatHandled}, []bool{false, false}},
		{"nil arrays", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGroup(tg, false, tt.support, tt.selected)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	t.Run("zero track group", func(t *testing.T) {
		_, err := NewGroup(TrackGroup{}, false, nil, nil)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAdaptiveNormalization(t *testing.T) {
	single := mustTrackGroup(t, "single", audioFormat("en", "en"))
	multi := mustTrackGroup(t, "multi", videoFormat("a", 640, 360), videoFormat("b", 1280, 720))

	tests := []struct {
		name     string
		tg       TrackGroup
		adaptive bool
		expected bool
	}{
		{"single track requested adaptive", single, true, false},
		{"single track not adaptive", single, false, false},
		{"multi track requested adaptive", multi, true, true},
		{"multi track not adaptive", multi, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.tg.Length()
			g := mustGroup(t, tt.tg, tt.adaptive, make([]FormatSupport, n), make([]bool, n))
			if g.IsAdaptiveSupported() != tt.expected {
				t.Errorf("IsAdaptiveSupported() = %v, expected %v", g.IsAdaptiveSupported(), tt.expected)
			}
		})
	}
}

func TestGroupCopiesInputs(t *testing.T) {
	tg := mustTrackGroup(t, "0", videoFormat("a", 640, 360), videoFormat("b", 1280, 720))
	support := []FormatSupport{FormatHandled, FormatUnsupportedSubtype}
	selected := []bool{true, false}

	g := mustGroup(t, tg, true, support, selected)
	support[0] = FormatUnsupportedType
	selected[0] = false

	if g.TrackSupport(0) != FormatHandled || !g.IsTrackSelected(0) {
		t.Error("caller mutation leaked into the group")
	}
}

func TestTrackSupportPolicy(t *testing.T) {
	levels := []FormatSupport{
		FormatHandled,
		FormatExceedsCapabilities,
		FormatUnsupportedDRM,
		FormatUnsupportedSubtype,
		FormatUnsupportedType,
	}
	formats := make([]Format, len(levels))
	for i := range formats {
		formats[i] = videoFormat(levels[i].String(), 640*(i+1), 360*(i+1))
	}
	g := mustGroup(t, mustTrackGroup(t, "0", formats...), false, levels, make([]bool, len(levels)))

	tests := []struct {
		level  FormatSupport
		strict bool
		loose  bool
	}{
		{FormatHandled, true, true},
		{FormatExceedsCapabilities, false, true},
		{FormatUnsupportedDRM, false, false},
		{FormatUnsupportedSubtype, false, false},
		{FormatUnsupportedType, false, false},
	}

	for i, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := g.TrackSupport(i); got != tt.level {
				t.Fatalf("TrackSupport(%d) = %s, expected %s", i, got, tt.level)
			}
			if got := g.IsTrackSupported(i, false); got != tt.strict {
				t.Errorf("IsTrackSupported(%d, false) = %v, expected %v", i, got, tt.strict)
			}
			if got := g.IsTrackSupported(i, true); got != tt.loose {
				t.Errorf("IsTrackSupported(%d, true) = %v, expected %v", i, got, tt.loose)
			}
		})
	}
}

func TestGroupIsSupported(t *testing.T) {
	tg := mustTrackGroup(t, "0", videoFormat("a", 640, 360), videoFormat("b", 3840, 2160))

	tests := []struct {
		name    string
		support []FormatSupport
		strict  bool
		loose   bool
	}{
		{"one handled", []FormatSupport{FormatUnsupportedSubtype, FormatHandled}, true, true},
		{"only exceeds", []FormatSupport{FormatUnsupportedType, FormatExceedsCapabilities}, false, true},
		{"none", []FormatSupport{FormatUnsupportedDRM, FormatUnsupportedType}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGroup(t, tg, false, tt.support, []bool{false, false})
			if g.IsSupported(false) != tt.strict {
				t.Errorf("IsSupported(false) = %v, expected %v", g.IsSupported(false), tt.strict)
			}
			if g.IsSupported(true) != tt.loose {
				t.Errorf("IsSupported(true) = %v, expected %v", g.IsSupported(true), tt.loose)
			}
		})
	}
}

func TestGroupSelection(t *testing.T) {
	tg := mustTrackGroup(t, "0", videoFormat("a", 640, 360), videoFormat("b", 1280, 720), videoFormat("c", 1920, 1080))
	support := []FormatSupport{FormatHandled, FormatHandled, FormatHandled}

	tests := []struct {
		name     string
		selected []bool
		expected bool
	}{
		{"none selected", []bool{false, false, false}, false},
		{"one selected", []bool{false, true, false}, true},
		{"adaptive working set", []bool{true, true, true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGroup(t, tg, true, support, tt.selected)
			if g.IsSelected() != tt.expected {
				t.Errorf("IsSelected() = %v, expected %v", g.IsSelected(), tt.expected)
			}
			for i, want := range tt.selected {
				if g.IsTrackSelected(i) != want {
					t.Errorf("IsTrackSelected(%d) = %v, expected %v", i, g.IsTrackSelected(i), want)
				}
			}
		})
	}
}

func TestGroupAccessorsOutOfRange(t *testing.T) {
	g := mustGroup(t, mustTrackGroup(t, "0", audioFormat("en", "en")), false,
		[]FormatSupport{FormatHandled}, []bool{true})

	expectIndexPanic(t, "TrackFormat", func() { g.TrackFormat(1) })
	expectIndexPanic(t, "TrackSupport", func() { g.TrackSupport(1) })
	expectIndexPanic(t, "IsTrackSupported", func() { g.IsTrackSupported(5, true) })
	expectIndexPanic(t, "IsTrackSelected", func() { g.IsTrackSelected(-1) })
}

func TestGroupDelegation(t *testing.T) {
	f := audioFormat("en", "en")
	tg := mustTrackGroup(t, "audio:1", f)
	g := mustGroup(t, tg, false, []FormatSupport{FormatHandled}, []bool{true})

	if g.Type() != TrackTypeAudio {
		t.Errorf("Type() = %s, expected audio", g.Type())
	}
	if g.TrackFormat(0) != f {
		t.Errorf("TrackFormat(0) = %+v, expected %+v", g.TrackFormat(0), f)
	}
	if !g.TrackGroup().Equal(tg) || g.Length() != 1 {
		t.Error("TrackGroup()/Length() do not reflect the wrapped track group")
	}
}

func TestGroupEquality(t *testing.T) {
	newGroup := func() Group {
		tg := mustTrackGroup(t, "0", videoFormat("a", 640, 360), videoFormat("b", 1280, 720))
		return mustGroup(t, tg, true, []FormatSupport{FormatHandled, FormatExceedsCapabilities}, []bool{true, false})
	}

	a, b := newGroup(), newGroup()
	if !a.Equal(b) {
		t.Fatal("identically built groups are not Equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("identically built groups hash differently")
	}

	tg := a.TrackGroup()
	variants := []struct {
		name  string
		group Group
	}{
		{"support element", mustGroup(t, tg, true, []FormatSupport{FormatHandled, FormatHandled}, []bool{true, false})},
		{"selection element", mustGroup(t, tg, true, []FormatSupport{FormatHandled, FormatExceedsCapabilities}, []bool{true, true})},
		{"adaptive flag", mustGroup(t, tg, false, []FormatSupport{FormatHandled, FormatExceedsCapabilities}, []bool{true, false})},
		{"track group", mustGroup(t,
			mustTrackGroup(t, "1", videoFormat("a", 640, 360), videoFormat("b", 1280, 720)),
			true, []FormatSupport{FormatHandled, FormatExceedsCapabilities}, []bool{true, false})},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			if a.Equal(v.group) {
				t.Errorf("changing the %s kept the groups equal", v.name)
			}
			if a.Hash() == v.group.Hash() {
				t.Errorf("changing the %s kept the hash", v.name)
			}
		})
	}
}
