package probe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/saintfish/chardet"
	"go2tv.app/trackstate/tracks"
)

// ErrUnsupportedSubtitle is returned for sidecar files of unknown format.
var ErrUnsupportedSubtitle = errors.New("probe: unsupported subtitle file")

var sidecarMIMEs = map[string]string{
	".srt": "application/x-subrip",
	".vtt": "text/vtt",
	".ass": "text/x-ssa",
	".ssa": "text/x-ssa",
}

// Sidecar describes an external subtitle file as a single-track text
// group. The detected charset is stored in Format.Codecs and a language
// suffix such as "movie.en.srt" fills Format.Language.
func (p *Prober) Sidecar(path string) (tracks.TrackGroup, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := sidecarMIMEs[ext]
	if !ok {
		return tracks.TrackGroup{}, errors.Wrapf(ErrUnsupportedSubtitle, "Sidecar: %s", filepath.Base(path))
	}

	charset, err := charsetOf(path)
	if err != nil {
		p.Log().Error().Str("function", "Sidecar").Str("Action", "charset").Err(err).Msg("")
		return tracks.TrackGroup{}, err
	}

	base := filepath.Base(path)
	f := tracks.UnknownFormat()
	f.ID = "sidecar:" + base
	f.Label = base
	f.Language = sidecarLanguage(base)
	f.SampleMIME = mime
	f.Codecs = charset

	return tracks.NewTrackGroup(f.ID, f)
}

func charsetOf(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "charsetOf")
	}
	defer f.Close()

	firstBytes := make([]byte, 512)
	n, err := f.Read(firstBytes)
	if err != nil {
		return "", errors.Wrap(err, "charsetOf")
	}

	det := chardet.NewTextDetector()
	charGuess, err := det.DetectBest(firstBytes[:n])
	if err != nil {
		return "", errors.Wrap(err, "charsetOf")
	}

	return charGuess.Charset, nil
}

// sidecarLanguage picks a two or three letter tag between the stem and the
// extension.
func sidecarLanguage(base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dot := strings.LastIndex(stem, ".")
	if dot < 0 {
		return ""
	}

	lang := strings.ToLower(stem[dot+1:])
	if len(lang) < 2 || len(lang) > 3 {
		return ""
	}
	for _, r := range lang {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return lang
}
