package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"go2tv.app/trackstate/tracks"
)

var tableHeader = []string{"GROUP", "TYPE", "#", "MIME", "LANG", "DETAILS", "SUPPORT", "SEL"}

// renderTable prints one row per track. Columns are padded by display
// width so labels in wide scripts stay aligned.
func renderTable(w io.Writer, ts tracks.Tracks) {
	if ts.IsEmpty() {
		fmt.Fprintln(w, "no tracks")
		return
	}

	rows := [][]string{tableHeader}
	for _, g := range ts.Groups() {
		tg := g.TrackGroup()
		for i := range g.Length() {
			f := g.TrackFormat(i)

			group := tg.ID()
			if g.IsAdaptiveSupported() {
				group += " (adaptive)"
			}

			sel := ""
			if g.IsTrackSelected(i) {
				sel = "*"
			}

			rows = append(rows, []string{
				group,
				g.Type().String(),
				strconv.Itoa(i),
				f.SampleMIME,
				f.Language,
				details(f),
				g.TrackSupport(i).String(),
				sel,
			})
		}
	}

	widths := make([]int, len(tableHeader))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		var sb strings.Builder
		for c, cell := range row {
			if c == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[c]))
			sb.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
}

func details(f tracks.Format) string {
	var parts []string
	if f.Label != "" {
		parts = append(parts, f.Label)
	}

	switch f.Type() {
	case tracks.TrackTypeVideo:
		if f.Width > 0 && f.Height > 0 {
			parts = append(parts, fmt.Sprintf("%dx%d", f.Width, f.Height))
		}
		if f.FrameRate > 0 {
			parts = append(parts, strconv.FormatFloat(f.FrameRate, 'f', 2, 64)+"fps")
		}
	case tracks.TrackTypeAudio:
		if f.Channels > 0 {
			parts = append(parts, strconv.Itoa(f.Channels)+"ch")
		}
		if f.SampleRate > 0 {
			parts = append(parts, strconv.Itoa(f.SampleRate)+"Hz")
		}
	case tracks.TrackTypeText:
		if f.Codecs != "" {
			parts = append(parts, f.Codecs)
		}
	}

	return strings.Join(parts, " ")
}
