package capabilities

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go2tv.app/trackstate/tracks"
)

// Evaluator turns probed track groups into a Tracks snapshot: every track is
// rated against Profile and one group per video, audio and text type is
// selected.
type Evaluator struct {
	Profile                Profile
	PreferredAudioLanguage string
	PreferredTextLanguage  string
	ShowSubtitles          bool
	LogOutput              io.Writer

	initLogOnce sync.Once
	logger      zerolog.Logger
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (e *Evaluator) Log() *zerolog.Logger {
	if e.LogOutput != nil {
		e.initLogOnce.Do(func() {
			e.logger = zerolog.New(e.LogOutput).With().Timestamp().Logger()
		})
	}
	return &e.logger
}

type candidate struct {
	tg       tracks.TrackGroup
	adaptive bool
	support  []tracks.FormatSupport
	selected []bool
}

// Evaluate rates and selects. Group order is preserved.
func (e *Evaluator) Evaluate(groups []tracks.TrackGroup) (tracks.Tracks, error) {
	cands := make([]candidate, len(groups))
	for i, tg := range groups {
		c := candidate{
			tg:       tg,
			adaptive: sameSampleMIME(tg),
			support:  make([]tracks.FormatSupport, tg.Length()),
			selected: make([]bool, tg.Length()),
		}
		for j := range tg.Length() {
			c.support[j] = e.Profile.Support(tg.Format(j))
		}
		cands[i] = c
	}

	for _, t := range []tracks.TrackType{tracks.TrackTypeVideo, tracks.TrackTypeAudio, tracks.TrackTypeText} {
		if t == tracks.TrackTypeText && !e.ShowSubtitles {
			continue
		}

		best := e.pick(cands, t)
		if best < 0 {
			e.Log().Debug().Str("function", "Evaluate").Str("Type", t.String()).Msg("no playable group")
			continue
		}
		cands[best].selectTracks()
		e.Log().Debug().Str("function", "Evaluate").Str("Type", t.String()).Str("Group", cands[best].tg.ID()).Msg("selected")
	}

	out := make([]tracks.Group, 0, len(cands))
	for _, c := range cands {
		g, err := tracks.NewGroup(c.tg, c.adaptive, c.support, c.selected)
		if err != nil {
			return tracks.Empty, errors.Wrapf(err, "Evaluate: group %s", c.tg.ID())
		}
		out = append(out, g)
	}

	return tracks.New(out), nil
}

// pick returns the index of the best playable group of type t, or -1.
// A preferred language scores 2, a track handled without exceeding limits
// scores 1; the earliest group wins ties.
func (e *Evaluator) pick(cands []candidate, t tracks.TrackType) int {
	var lang string
	switch t {
	case tracks.TrackTypeAudio:
		lang = e.PreferredAudioLanguage
	case tracks.TrackTypeText:
		lang = e.PreferredTextLanguage
	}

	best, bestScore := -1, -1
	for i, c := range cands {
		if c.tg.Type() != t || !c.playable() {
			continue
		}

		score := 0
		if lang != "" && c.hasLanguage(lang) {
			score += 2
		}
		if c.handled() {
			score++
		}

		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// selectTracks marks the tracks to play. Adaptive groups select every
// handled track so the player can switch between them.
func (c *candidate) selectTracks() {
	for i, s := range c.support {
		if s == tracks.FormatHandled {
			c.selected[i] = true
			if !c.adaptive {
				return
			}
		}
	}
	if c.handled() {
		return
	}

	for i, s := range c.support {
		if s == tracks.FormatExceedsCapabilities {
			c.selected[i] = true
			return
		}
	}
}

func (c *candidate) playable() bool {
	for _, s := range c.support {
		if s == tracks.FormatHandled || s == tracks.FormatExceedsCapabilities {
			return true
		}
	}
	return false
}

func (c *candidate) handled() bool {
	for _, s := range c.support {
		if s == tracks.FormatHandled {
			return true
		}
	}
	return false
}

func (c *candidate) hasLanguage(lang string) bool {
	for _, f := range c.tg.Formats() {
		if languageMatches(lang, f.Language) {
			return true
		}
	}
	return false
}

// languageMatches treats "en" and "eng" as the same language.
func languageMatches(want, have string) bool {
	want, have = strings.ToLower(want), strings.ToLower(have)
	if want == "" || have == "" {
		return false
	}
	if want == have {
		return true
	}
	if len(want) < 2 || len(have) < 2 {
		return false
	}
	return want[:2] == have[:2] && (strings.HasPrefix(have, want) || strings.HasPrefix(want, have))
}

func sameSampleMIME(tg tracks.TrackGroup) bool {
	if tg.Length() < 2 {
		return false
	}
	first := tg.Format(0).SampleMIME
	for _, f := range tg.Formats()[1:] {
		if f.SampleMIME != first {
			return false
		}
	}
	return true
}
