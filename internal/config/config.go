package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	FFmpegPath             string  `json:"ffmpeg_path"`
	Profile                string  `json:"profile"`
	PreferredAudioLanguage string  `json:"preferred_audio_language"`
	PreferredTextLanguage  string  `json:"preferred_text_language"`
	ShowSubtitles          bool    `json:"show_subtitles"`
	ListenAddr             string  `json:"listen_addr"`
	RequestsPerSecond      float64 `json:"requests_per_second"`
}

// Default is written on first run.
func Default() *Config {
	return &Config{
		FFmpegPath:        "ffmpeg",
		Profile:           "chromecast",
		ShowSubtitles:     true,
		ListenAddr:        ":3500",
		RequestsPerSecond: 20,
	}
}

func GetAppConfig() (*Config, error) {
	path, err := appPath()
	if err != nil {
		return nil, fmt.Errorf("GetAppConfig: failed to access config path due to error %w:", err)
	}

	cfgfile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			err := os.MkdirAll(filepath.Dir(path), 0700)
			if err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to create default path due to error %w:", err)
			}

			conf := Default()

			b, err := json.MarshalIndent(conf, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to convert and store default config %w:", err)
			}

			if err := os.WriteFile(path, b, 0644); err != nil {
				return nil, fmt.Errorf("GetAppConfig: failed to create default config due to error %w:", err)
			}

			return conf, nil
		}

		return nil, fmt.Errorf("GetAppConfig: failed to open config due to error %w:", err)
	}
	defer cfgfile.Close()

	// Fields missing from older files keep their defaults.
	conf := Default()
	if err := json.NewDecoder(cfgfile).Decode(conf); err != nil {
		return nil, fmt.Errorf("GetAppConfig: failed to decode config due to error %w:", err)
	}

	return conf, nil
}

func appPath() (string, error) {
	oscfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("appPath: failed to get config file due to error %w:", err)
	}

	return filepath.Join(oscfg, "trackstate", "settings.json"), nil
}

func (s *Config) SaveAppConfig() error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("SaveAppConfig: failed to marshal json due to error %w:", err)
	}

	path, err := appPath()
	if err != nil {
		return fmt.Errorf("SaveAppConfig: failed to access config path due to error %w:", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("SaveAppConfig: failed to create config path due to error %w:", err)
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("SaveAppConfig: failed save config due to error %w:", err)
	}

	return nil
}
