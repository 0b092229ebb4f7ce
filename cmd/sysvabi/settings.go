package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sysvabi/internal/config"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on":
		return colorOn, nil
	case "off":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func shouldColor(mode colorMode, f *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}

// settings merges sysvabi.toml with the global flags; flags set on the
// command line win.
type settings struct {
	cfg     config.Config
	color   bool
	quiet   bool
	timings bool
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	colorValue := cfg.Output.Color
	if flags.Changed("color") {
		if colorValue, err = flags.GetString("color"); err != nil {
			return nil, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	mode, err := readColorMode(colorValue)
	if err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg, color: shouldColor(mode, os.Stdout)}
	// fatih/color decides on its own from stdout; keep it in line with
	// the flag for everything that prints through it.
	color.NoColor = !s.color

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return s, nil
}

// warnf prints a non-fatal message unless --quiet is set.
func (s *settings) warnf(cmd *cobra.Command, format string, args ...any) {
	if s.quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
