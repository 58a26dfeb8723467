package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// RenderEffective writes the resolved configuration to w as a TOML
// document that Load accepts unchanged. This powers "config show".
func RenderEffective(r *Resolved, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Effective configuration (file: %s)\n\n", displayPath(r.ConfigPath)); err != nil {
		return fmt.Errorf("writing config header: %w", err)
	}

	if err := toml.NewEncoder(w).Encode(r.Config); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return nil
}

func displayPath(path string) string {
	if path == "" {
		return "none"
	}

	return path
}
