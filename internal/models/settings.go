package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/audiovault/internal/shared"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// ParseTheme parses "dark" or "light".
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	default:
		return "", fmt.Errorf("%w: theme %q", shared.ErrInvalidArgument, s)
	}
}

// Settings are the user preferences stored under "user-settings".
type Settings struct {
	Email             string `json:"email"`
	DarkMode          bool   `json:"darkMode"`
	OutputDirectory   string `json:"outputDirectory"`
	ThumbnailsEnabled bool   `json:"thumbnailsEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		Email:             "admin@example.com",
		DarkMode:          true,
		OutputDirectory:   DefaultSpotifyDir,
		ThumbnailsEnabled: true,
	}
}

// Set assigns a field by its JSON key from a string value.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "email":
		s.Email = value
	case "outputDirectory":
		if value == "" {
			return fmt.Errorf("%w: outputDirectory cannot be empty", shared.ErrValidation)
		}
		s.OutputDirectory = value
	case "darkMode", "thumbnailsEnabled":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		if key == "darkMode" {
			s.DarkMode = b
		} else {
			s.ThumbnailsEnabled = b
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", shared.ErrInvalidArgument, key)
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected boolean, got %q", shared.ErrInvalidArgument, v)
	}
}
