package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go2tv.app/trackstate/capabilities"
	"go2tv.app/trackstate/internal/config"
	"go2tv.app/trackstate/internal/httphandlers"
	"go2tv.app/trackstate/probe"
	"go2tv.app/trackstate/tracks"
	"go2tv.app/trackstate/transport"
)

var (
	//go:embed version.txt
	version    string
	errNoflag  = errors.New("no flag used")
	mediaArg   = flag.String("v", "", "Local path to the video/audio file to inspect.")
	subsArg    = flag.String("s", "", "Local path to a subtitles file. Defaults to a .srt next to the media file.")
	profileArg = flag.String("p", "", "Receiver profile to rate tracks against (chromecast, dlna).")
	serveArg   = flag.String("serve", "", "Publish the tracks on this address, e.g. :3500.")
	watchArg   = flag.String("watch", "", "Follow the tracks published by a trackstate server, e.g. http://host:3500.")
	savePtr    = flag.Bool("save", false, "Store -p and -serve in the settings file.")
	debugPtr   = flag.Bool("debug", false, "Enable debug logging.")
	versionPtr = flag.Bool("version", false, "Print version.")

	ErrNoCombi = errors.New("can't combine -watch with -v or -serve")
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, errNoflag) {
			flag.Usage()
			os.Exit(0)
		}

		fmt.Fprintf(os.Stderr, "Encountered error(s): %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	exitCTX, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	flag.Parse()

	flagRes, err := processflags()
	if err != nil {
		return err
	}

	if flagRes.exit {
		return nil
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debugPtr {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	logw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger := zerolog.New(logw).With().Timestamp().Logger()

	cfg, err := config.GetAppConfig()
	if err != nil {
		logger.Warn().Str("function", "run").Err(err).Msg("using default settings")
		cfg = config.Default()
	}
	applyFlags(cfg)

	if *savePtr {
		if err := saveSettings(cfg); err != nil {
			return err
		}
		logger.Info().Str("function", "run").Msg("settings saved")
	}

	if flagRes.saveOnly {
		return nil
	}

	if *watchArg != "" {
		return watch(exitCTX, *watchArg, logw, os.Stdout)
	}

	ts, err := inspect(exitCTX, cfg, flagRes.subsDefaulted, logw)
	if err != nil {
		return err
	}

	renderTable(os.Stdout, ts)

	if *serveArg == "" {
		return nil
	}

	s := httphandlers.NewServer(cfg.ListenAddr, cfg.RequestsPerSecond, logw)
	serverStarted := make(chan error)

	go func() {
		s.StartServer(serverStarted)
	}()

	// Wait for HTTP server to properly initialize
	if err := <-serverStarted; err != nil {
		return err
	}

	if err := s.Publish(ts); err != nil {
		s.StopServer()
		return err
	}

	<-exitCTX.Done()
	s.StopServer()

	return nil
}

func applyFlags(cfg *config.Config) {
	if *profileArg != "" {
		cfg.Profile = *profileArg
	}
	if *serveArg != "" {
		cfg.ListenAddr = *serveArg
	}
}

// saveSettings persists cfg after the command line overrides are applied.
func saveSettings(cfg *config.Config) error {
	if err := cfg.SaveAppConfig(); err != nil {
		return fmt.Errorf("saveSettings: %w", err)
	}
	return nil
}

// inspect reads the media and sidecar files and rates them against the
// configured profile. A missing sidecar is skipped only when subsOptional.
func inspect(ctx context.Context, cfg *config.Config, subsOptional bool, logw io.Writer) (tracks.Tracks, error) {
	profile, err := capabilities.ProfileByName(cfg.Profile)
	if err != nil {
		return tracks.Empty, err
	}

	absMediaFile, err := filepath.Abs(*mediaArg)
	if err != nil {
		return tracks.Empty, err
	}

	p := &probe.Prober{FFmpegPath: cfg.FFmpegPath, LogOutput: logw}
	if err := p.Check(ctx); err != nil {
		return tracks.Empty, err
	}

	groups, err := p.File(ctx, absMediaFile)
	if err != nil {
		return tracks.Empty, err
	}

	if *subsArg != "" {
		_, err := os.Stat(*subsArg)
		switch {
		case err == nil:
			sidecar, err := p.Sidecar(*subsArg)
			if err != nil {
				return tracks.Empty, err
			}
			groups = append(groups, sidecar)
		case !subsOptional:
			return tracks.Empty, fmt.Errorf("inspect: %w", err)
		}
	}

	e := &capabilities.Evaluator{
		Profile:                profile,
		PreferredAudioLanguage: cfg.PreferredAudioLanguage,
		PreferredTextLanguage:  cfg.PreferredTextLanguage,
		ShowSubtitles:          cfg.ShowSubtitles,
		LogOutput:              logw,
	}

	return e.Evaluate(groups)
}

// watch prints the current snapshot of a remote server and every update
// after it until ctx is done.
func watch(ctx context.Context, baseURL string, logw io.Writer, out io.Writer) error {
	c := transport.NewClient(baseURL, 3)
	c.LogOutput = logw

	snap, err := c.Fetch(ctx)
	if err != nil {
		return err
	}
	printSnapshot(out, snap)

	logger := zerolog.New(logw).With().Timestamp().Logger()
	return transport.Watch(ctx, transport.WatchURL(baseURL), func(s transport.Snapshot) {
		if s.ID == snap.ID {
			return
		}
		printSnapshot(out, s)
	}, func(err error) {
		logger.Error().Str("function", "watch").Str("Action", "Decode").Err(err).Msg("")
	})
}

func printSnapshot(out io.Writer, s transport.Snapshot) {
	fmt.Fprintf(out, "\n%s  %s  %s\n", s.CreatedAt.Local().Format(time.Kitchen), s.ID, s.Schema)
	renderTable(out, s.Tracks)
}
