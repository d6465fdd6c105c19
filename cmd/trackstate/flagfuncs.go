package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type flagResults struct {
	exit bool
	// saveOnly is set when -save is the only action requested.
	saveOnly bool
	// subsDefaulted is set when -s was derived from the media path.
	subsDefaulted bool
}

func processflags() (*flagResults, error) {
	res := &flagResults{}

	if checkVerflag() {
		res.exit = true
		return res, nil
	}

	if *mediaArg == "" && *watchArg == "" {
		if *savePtr {
			res.saveOnly = true
			return res, nil
		}
		return nil, fmt.Errorf("checkflags error: %w", errNoflag)
	}

	if err := checkWatchflag(); err != nil {
		return nil, fmt.Errorf("checkflags error: %w", err)
	}

	if *watchArg != "" {
		return res, nil
	}

	if err := checkVflag(); err != nil {
		return nil, fmt.Errorf("checkflags error: %w", err)
	}

	if err := checkSflag(res); err != nil {
		return nil, fmt.Errorf("checkflags error: %w", err)
	}

	return res, nil
}

func checkVflag() error {
	if _, err := os.Stat(*mediaArg); err != nil {
		return fmt.Errorf("checkVflags error: %w", err)
	}

	return nil
}

// checkSflag falls back to a .srt file next to the media file. Only a
// missing default sidecar is tolerated.
func checkSflag(res *flagResults) error {
	if *subsArg != "" {
		if _, err := os.Stat(*subsArg); err != nil {
			return fmt.Errorf("checkSflags error: %w", err)
		}
		return nil
	}

	*subsArg = strings.TrimSuffix(*mediaArg, filepath.Ext(*mediaArg)) + ".srt"
	res.subsDefaulted = true
	return nil
}

func checkWatchflag() error {
	if *watchArg == "" {
		return nil
	}

	if *mediaArg != "" || *serveArg != "" {
		return ErrNoCombi
	}

	u, err := url.ParseRequestURI(*watchArg)
	if err != nil {
		return fmt.Errorf("checkWatchflag parse error: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("checkWatchflag: unsupported scheme %q", u.Scheme)
	}

	return nil
}

func checkVerflag() bool {
	if *versionPtr {
		fmt.Printf("trackstate %s\n", strings.TrimSpace(version))
		return true
	}

	return false
}
