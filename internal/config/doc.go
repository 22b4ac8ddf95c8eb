// Package config provides configuration management for memefetch.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings as YAML
//   - Locating the settings file under the XDG config directory
//   - Validating settings before a run starts
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Downloads into ./public/memes
//	// 30 second request timeout, one download at a time
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // A missing file is not an error; defaults are returned instead
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/srv/static/memes"
//	err := settings.Save(config.DefaultPath())
//
// Command line flags are applied on top of loaded settings by the caller and
// the result checked with Validate.
package config
