package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"go2tv.app/trackstate/tracks"
)

func TestRenderTable(t *testing.T) {
	v := tracks.UnknownFormat()
	v.ID = "0"
	v.SampleMIME = "video/avc"
	v.Width, v.Height, v.FrameRate = 1920, 1080, 23.976

	a := tracks.UnknownFormat()
	a.ID = "1"
	a.SampleMIME = "audio/mp4a-latm"
	a.Language = "ja"
	a.Label = "日本語"
	a.Channels = 2

	vg, err := tracks.NewTrackGroup("0", v)
	if err != nil {
		t.Fatal(err)
	}
	ag, err := tracks.NewTrackGroup("1", a)
	if err != nil {
		t.Fatal(err)
	}
	video, err := tracks.NewGroup(vg, false, []tracks.FormatSupport{tracks.FormatHandled}, []bool{true})
	if err != nil {
		t.Fatal(err)
	}
	audio, err := tracks.NewGroup(ag, false, []tracks.FormatSupport{tracks.FormatExceedsCapabilities}, []bool{false})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	renderTable(&out, tracks.New([]tracks.Group{video, audio}))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}

	if !strings.Contains(lines[1], "1920x1080 23.98fps") || !strings.HasSuffix(lines[1], "*") {
		t.Errorf("video row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "日本語 2ch") || !strings.Contains(lines[2], "EXCEEDS_CAPABILITIES") {
		t.Errorf("audio row = %q", lines[2])
	}

	// SUPPORT starts at the same display column on every row.
	col := func(line, cell string) int {
		return runewidth.StringWidth(line[:strings.Index(line, cell)])
	}
	if col(lines[0], "SUPPORT") != col(lines[1], "HANDLED") || col(lines[0], "SUPPORT") != col(lines[2], "EXCEEDS") {
		t.Errorf("columns are misaligned:\n%s", out.String())
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var out bytes.Buffer
	renderTable(&out, tracks.Empty)
	if out.String() != "no tracks\n" {
		t.Errorf("got %q", out.String())
	}
}
