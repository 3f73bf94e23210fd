package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMalformedDesktopLine is returned for a desktop list line that does not
// hold an icon, a command and a label.
var ErrMalformedDesktopLine = errors.New("malformed desktop line")

// DesktopEntry is one icon on the wallpaper.
type DesktopEntry struct {
	Icon    string
	Command string
	Label   string
}

// ParseDesktopList reads "icon,command,label" lines. Blank lines and lines
// starting with '#' are skipped. The label keeps any further commas.
func ParseDesktopList(r io.Reader) ([]DesktopEntry, error) {
	var entries []DesktopEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: %q: %w", lineNo, line, ErrMalformedDesktopLine)
		}
		entries = append(entries, DesktopEntry{
			Icon:    strings.TrimSpace(fields[0]),
			Command: strings.TrimSpace(fields[1]),
			Label:   strings.TrimSpace(fields[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadDesktopList parses path, or fallback when path does not exist. It
// returns the file actually read.
func LoadDesktopList(path, fallback string) ([]DesktopEntry, string, error) {
	chosen := ExpandHome(path)
	f, err := os.Open(chosen)
	if errors.Is(err, os.ErrNotExist) && fallback != "" {
		chosen = ExpandHome(fallback)
		f, err = os.Open(chosen)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open desktop list: %w", err)
	}
	defer f.Close()

	entries, err := ParseDesktopList(f)
	if err != nil {
		return nil, chosen, fmt.Errorf("%s: %w", chosen, err)
	}
	return entries, chosen, nil
}

// WallpaperPath reads the "wallpaper" key from the key=value file at conf.
// It returns fallback when the file or the key is missing.
func WallpaperPath(conf, fallback string) string {
	values, err := godotenv.Read(ExpandHome(conf))
	if err != nil {
		return fallback
	}
	if wp := strings.TrimSpace(values["wallpaper"]); wp != "" {
		return ExpandHome(wp)
	}
	return fallback
}
