package fontsource

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultFontDirectories returns the platform-specific list of directories
// the OS conventionally installs fonts into (spec.md §4.B). Directories
// that cannot be resolved (e.g. $HOME is unset) are simply omitted, not
// treated as an error.
func DefaultFontDirectories() ([]string, error) {
	switch runtime.GOOS {
	case "windows":
		return windowsFontDirectories(), nil
	case "darwin":
		return darwinFontDirectories(), nil
	default:
		return unixFontDirectories(), nil
	}
}

func windowsFontDirectories() []string {
	var dirs []string
	winDir := os.Getenv("WINDIR")
	if winDir == "" {
		winDir = `C:\Windows`
	}
	dirs = append(dirs, filepath.Join(winDir, "Fonts"))
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		dirs = append(dirs, filepath.Join(localAppData, "Microsoft", "Windows", "Fonts"))
	}
	return dirs
}

func darwinFontDirectories() []string {
	dirs := []string{
		"/System/Library/Fonts",
		"/Library/Fonts",
		"/System/Library/Fonts/Supplemental",
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
	}
	return dirs
}

func unixFontDirectories() []string {
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".fonts"))
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData == "" {
			xdgData = filepath.Join(home, ".local", "share")
		}
		dirs = append(dirs, filepath.Join(xdgData, "fonts"))
	}
	return dirs
}
