// Package probe discovers the tracks of a media file with ffprobe and
// turns them into track groups.
package probe

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go2tv.app/trackstate/tracks"
)

var (
	// ErrNotMedia is returned for files that are recognised as something
	// other than audio or video.
	ErrNotMedia = errors.New("probe: not a media file")

	// ErrNoTracks is returned when ffprobe reports no usable streams.
	ErrNoTracks = errors.New("probe: no tracks")
)

// Prober runs ffprobe. The ffprobe binary is expected next to FFmpegPath;
// a bare "ffmpeg" resolves "ffprobe" through PATH.
type Prober struct {
	FFmpegPath string
	LogOutput  io.Writer

	initLogOnce sync.Once
	logger      zerolog.Logger
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (p *Prober) Log() *zerolog.Logger {
	if p.LogOutput != nil {
		p.initLogOnce.Do(func() {
			p.logger = zerolog.New(p.LogOutput).With().Timestamp().Logger()
		})
	}
	return &p.logger
}

type ffprobeInfo struct {
	Format struct {
		FormatName string `json:"format_name"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Profile      string `json:"profile"`
	Channels     int    `json:"channels"`
	SampleRate   string `json:"sample_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	BitRate      string `json:"bit_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Tags         any    `json:"tags,omitempty"`
}

type tags struct {
	Title    string `mapstructure:"title"`
	Language string `mapstructure:"language"`
}

// File probes a media file and returns one track group per stream, in
// stream order.
func (p *Prober) File(ctx context.Context, path string) ([]tracks.TrackGroup, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "File")
	}

	container, err := sniffContainer(path)
	if err != nil {
		p.Log().Error().Str("function", "File").Str("Action", "sniff").Err(err).Msg("")
		return nil, err
	}

	cmd := exec.CommandContext(ctx,
		ffprobePath(p.FFmpegPath),
		"-loglevel", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	setSysProcAttr(cmd)

	output, err := cmd.Output()
	if err != nil {
		p.Log().Error().Str("function", "File").Str("Action", "ffprobe").Err(err).Msg("")
		return nil, errors.Wrap(err, "File: ffprobe")
	}

	groups, err := ParseFFprobe(output, container)
	if err != nil {
		return nil, err
	}

	p.Log().Debug().Str("function", "File").Str("Path", path).Str("Container", container).Int("Groups", len(groups)).Msg("probed")
	return groups, nil
}

// ParseFFprobe converts `ffprobe -show_streams -of json` output into track
// groups. Attachment and data streams are skipped.
func ParseFFprobe(data []byte, containerMIME string) ([]tracks.TrackGroup, error) {
	var info ffprobeInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrap(err, "ParseFFprobe")
	}

	out := make([]tracks.TrackGroup, 0, len(info.Streams))
	for _, s := range info.Streams {
		if s.CodecType != "video" && s.CodecType != "audio" && s.CodecType != "subtitle" {
			continue
		}

		tag := &tags{}
		if err := mapstructure.Decode(s.Tags, tag); err != nil {
			return nil, errors.Wrapf(err, "ParseFFprobe: stream %d tags", s.Index)
		}

		id := strconv.Itoa(s.Index)
		f := tracks.UnknownFormat()
		f.ID = id
		f.Label = tag.Title
		f.Language = normalizeLanguage(tag.Language)
		f.ContainerMIME = containerMIME
		f.SampleMIME = sampleMIME(s.CodecType, s.CodecName)
		f.Codecs = s.CodecName
		f.Bitrate = atoiOr(s.BitRate, tracks.NoValue)

		switch s.CodecType {
		case "video":
			f.Width = positiveOr(s.Width, tracks.NoValue)
			f.Height = positiveOr(s.Height, tracks.NoValue)
			f.FrameRate = parseRate(s.AvgFrameRate)
		case "audio":
			f.Channels = positiveOr(s.Channels, tracks.NoValue)
			f.SampleRate = atoiOr(s.SampleRate, tracks.NoValue)
		}

		tg, err := tracks.NewTrackGroup(id, f)
		if err != nil {
			return nil, errors.Wrapf(err, "ParseFFprobe: stream %d", s.Index)
		}
		out = append(out, tg)
	}

	if len(out) == 0 {
		return nil, ErrNoTracks
	}

	return out, nil
}

// sniffContainer returns the container MIME type of path. Files filetype
// does not recognise pass with an empty MIME type and are left to ffprobe.
func sniffContainer(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "sniffContainer")
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "sniffContainer")
	}

	kind, err := filetype.Match(head[:n])
	if err != nil {
		return "", errors.Wrap(err, "sniffContainer")
	}

	if kind == filetype.Unknown {
		return "", nil
	}

	if kind.MIME.Type != "video" && kind.MIME.Type != "audio" {
		return "", errors.Wrapf(ErrNotMedia, "sniffContainer: %s is %s", filepath.Base(path), kind.MIME.Value)
	}

	return kind.MIME.Value, nil
}

func ffprobePath(ffmpeg string) string {
	if ffmpeg == "" || filepath.Base(ffmpeg) == ffmpeg {
		return "ffprobe"
	}

	name := "ffprobe"
	if strings.HasSuffix(strings.ToLower(ffmpeg), ".exe") {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(ffmpeg), name)
}

var codecMIMEs = map[string]string{
	"h264":              "video/avc",
	"hevc":              "video/hevc",
	"vp8":               "video/x-vnd.on2.vp8",
	"vp9":               "video/x-vnd.on2.vp9",
	"av1":               "video/av01",
	"mpeg4":             "video/mp4v-es",
	"mpeg2video":        "video/mpeg2",
	"mpeg1video":        "video/mpeg",
	"vc1":               "video/wvc1",
	"wmv3":              "video/x-ms-wmv",
	"mjpeg":             "image/jpeg",
	"png":               "image/png",
	"aac":               "audio/mp4a-latm",
	"mp3":               "audio/mpeg",
	"mp2":               "audio/mpeg-l2",
	"opus":              "audio/opus",
	"vorbis":            "audio/vorbis",
	"flac":              "audio/flac",
	"alac":              "audio/alac",
	"ac3":               "audio/ac3",
	"eac3":              "audio/eac3",
	"dts":               "audio/vnd.dts",
	"truehd":            "audio/true-hd",
	"pcm_s16le":         "audio/raw",
	"pcm_s24le":         "audio/raw",
	"subrip":            "application/x-subrip",
	"srt":               "application/x-subrip",
	"webvtt":            "text/vtt",
	"ass":               "text/x-ssa",
	"ssa":               "text/x-ssa",
	"mov_text":          "application/x-quicktime-tx3g",
	"hdmv_pgs_subtitle": "application/pgs",
	"dvd_subtitle":      "application/vobsub",
	"dvb_subtitle":      "application/dvbsubs",
	"eia_608":           "application/cea-608",
}

// sampleMIME maps an ffprobe codec name to a sample MIME type. Unknown
// codecs keep their stream type so they still classify correctly.
func sampleMIME(codecType, codecName string) string {
	if mime, ok := codecMIMEs[codecName]; ok {
		return mime
	}

	top := codecType
	if codecType == "subtitle" {
		top = "text"
	}
	return top + "/x-" + codecName
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "und" {
		return ""
	}
	return lang
}

// parseRate parses ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !(v > 0) || math.IsInf(v, 0) {
			return tracks.NoValue
		}
		return v
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return tracks.NoValue
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 || n <= 0 {
		return tracks.NoValue
	}
	if r := n / d; r > 0 && !math.IsInf(r, 0) {
		return r
	}
	return tracks.NoValue
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
