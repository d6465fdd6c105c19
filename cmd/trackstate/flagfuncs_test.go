package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"go2tv.app/trackstate/internal/config"
)

func setFlags(t *testing.T, media, subs, serve, watch string) {
	t.Helper()
	oldMedia, oldSubs, oldServe, oldWatch, oldSave := *mediaArg, *subsArg, *serveArg, *watchArg, *savePtr
	*mediaArg, *subsArg, *serveArg, *watchArg = media, subs, serve, watch
	t.Cleanup(func() {
		*mediaArg, *subsArg, *serveArg, *watchArg, *savePtr = oldMedia, oldSubs, oldServe, oldWatch, oldSave
	})
}

func TestProcessflags(t *testing.T) {
	media := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(media, []byte("dummy"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		media   string
		serve   string
		watch   string
		save    bool
		wantErr error
		fails   bool
	}{
		{name: "no flags", wantErr: errNoflag},
		{name: "media", media: media},
		{name: "media and serve", media: media, serve: ":0"},
		{name: "missing media", media: media + ".missing", fails: true},
		{name: "watch", watch: "http://127.0.0.1:3500"},
		{name: "watch with media", media: media, watch: "http://127.0.0.1:3500", wantErr: ErrNoCombi},
		{name: "watch with serve", serve: ":0", watch: "http://127.0.0.1:3500", wantErr: ErrNoCombi},
		{name: "watch bad scheme", watch: "ftp://host", fails: true},
		{name: "watch not a url", watch: "host:3500", fails: true},
		{name: "save only", save: true},
		{name: "save with media", media: media, save: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.media, "", tt.serve, tt.watch)
			*savePtr = tt.save

			res, err := processflags()
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.fails:
				if err == nil {
					t.Error("expected error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.saveOnly != (tt.save && tt.media == "" && tt.watch == "") {
					t.Errorf("saveOnly = %v", res.saveOnly)
				}
			}
		})
	}
}

func TestCheckSflagDefaultsToSRT(t *testing.T) {
	setFlags(t, filepath.Join("media", "movie.mkv"), "", "", "")

	res := &flagResults{}
	if err := checkSflag(res); err != nil {
		t.Fatalf("checkSflag: %v", err)
	}

	if expected := filepath.Join("media", "movie.srt"); *subsArg != expected {
		t.Errorf("subsArg = %q, expected %q", *subsArg, expected)
	}
	if !res.subsDefaulted {
		t.Error("defaulted sidecar was not marked optional")
	}
}

func TestCheckSflagExplicitPath(t *testing.T) {
	dir := t.TempDir()
	subs := filepath.Join(dir, "movie.en.srt")
	if err := os.WriteFile(subs, []byte("1\n00:00:01,000 --> 00:00:02,000\nHi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		subs  string
		fails bool
	}{
		{name: "existing", subs: subs},
		{name: "missing", subs: filepath.Join(dir, "typo.srt"), fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, filepath.Join(dir, "movie.mkv"), tt.subs, "", "")

			res := &flagResults{}
			err := checkSflag(res)
			if tt.fails && !errors.Is(err, os.ErrNotExist) {
				t.Errorf("expected a not-exist error, got %v", err)
			}
			if !tt.fails && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if res.subsDefaulted {
				t.Error("explicit sidecar marked as defaulted")
			}
			if *subsArg != tt.subs {
				t.Errorf("subsArg = %q, expected %q", *subsArg, tt.subs)
			}
		})
	}
}

func TestSaveSettings(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives os.UserConfigDir on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	oldProfile := *profileArg
	*profileArg = "dlna"
	t.Cleanup(func() { *profileArg = oldProfile })
	setFlags(t, "", "", ":4000", "")

	cfg := config.Default()
	applyFlags(cfg)
	if err := saveSettings(cfg); err != nil {
		t.Fatalf("saveSettings: %v", err)
	}

	got, err := config.GetAppConfig()
	if err != nil {
		t.Fatalf("GetAppConfig: %v", err)
	}
	if got.Profile != "dlna" || got.ListenAddr != ":4000" {
		t.Errorf("saved settings = %+v", got)
	}
}
