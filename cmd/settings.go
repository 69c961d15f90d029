package main

import (
	"context"

	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/repositories"
	"github.com/urfave/cli/v3"
)

type settingsView struct {
	Theme    models.Theme    `json:"theme"`
	Settings models.Settings `json:"settings"`
}

// SettingsShow prints the stored preferences and theme.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	var view settingsView
	err := r.withStore(ctx, func(store *repositories.SettingsRepository) error {
		theme, err := store.Theme(ctx)
		if err != nil {
			return err
		}
		prefs, err := store.UserSettings(ctx)
		if err != nil {
			return err
		}
		view = settingsView{Theme: theme, Settings: prefs}
		return nil
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}

	r.writePlainHeader("Settings")
	r.writePlain("theme:             %s\n", view.Theme)
	r.writePlain("email:             %s\n", view.Settings.Email)
	r.writePlain("darkMode:          %t\n", view.Settings.DarkMode)
	r.writePlain("outputDirectory:   %s\n", view.Settings.OutputDirectory)
	return r.writePlain("thumbnailsEnabled: %t\n", view.Settings.ThumbnailsEnabled)
}

// SettingsSet changes one preference by its JSON key.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")

	return r.withStore(ctx, func(store *repositories.SettingsRepository) error {
		prefs, err := store.UserSettings(ctx)
		if err != nil {
			r.logger.Warn("stored settings unreadable, starting from defaults", "error", err)
		}
		if err := prefs.Set(key, value); err != nil {
			return err
		}
		if err := store.SaveUserSettings(ctx, prefs); err != nil {
			return err
		}
		r.logger.Info("setting saved", "key", key, "value", value)
		return nil
	})
}

// SettingsTheme prints the theme, sets it from the argument, or toggles it with --toggle.
func (r *Runner) SettingsTheme(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("theme")

	var theme models.Theme
	err := r.withStore(ctx, func(store *repositories.SettingsRepository) error {
		var err error
		switch {
		case cmd.Bool("toggle"):
			theme, err = store.ToggleTheme(ctx)
		case arg != "":
			if theme, err = models.ParseTheme(arg); err != nil {
				return err
			}
			err = store.SetTheme(ctx, theme)
		default:
			theme, err = store.Theme(ctx)
		}
		return err
	})
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", theme)
}
