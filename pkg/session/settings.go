package session

import (
	"os"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/jesseduffield/yaml"
)

// Shell is the sum type from spec.md §9: the settings-record parser must
// round-trip through the accepted {bash, /bin/bash, sh, /bin/sh} set on
// read.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellSh   Shell = "sh"
)

// Settings is the setting.yaml schema from spec.md §6. The YAML key for
// the target id is docker_container_id, confirmed against
// original_source/src/setting_yaml.rs (see DESIGN.md open-question (c)).
type Settings struct {
	DockerContainerID string   `yaml:"docker_container_id"`
	Shell             string   `yaml:"shell"`
	Commands          []string `yaml:"commands"`
}

// NormalizedShell parses Settings.Shell against the accepted set,
// failing with KindUnexpectedShell for anything else.
func (s Settings) NormalizedShell() (Shell, error) {
	switch s.Shell {
	case "bash", "/bin/bash":
		return ShellBash, nil
	case "sh", "/bin/sh":
		return ShellSh, nil
	default:
		return "", ierrors.New(ierrors.KindUnexpectedShell, "unexpected shell: "+s.Shell)
	}
}

// ReadSettings reads and parses sess.SettingsPath.
func ReadSettings(sess Session) (Settings, error) {
	raw, err := os.ReadFile(sess.SettingsPath)
	if err != nil {
		return Settings{}, ierrors.Wrap(ierrors.KindContainerNotFound, err, "reading "+sess.SettingsPath)
	}

	var settings Settings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return Settings{}, ierrors.Wrap(ierrors.KindUnexpectedShell, err, "parsing "+sess.SettingsPath)
	}

	if _, err := settings.NormalizedShell(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// WriteSettings marshals settings as YAML to sess.SettingsPath.
func WriteSettings(sess Session, settings Settings) error {
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return ierrors.Wrap(ierrors.KindUnexpectedShell, err, "marshaling settings")
	}

	if err := os.WriteFile(sess.SettingsPath, raw, 0o644); err != nil {
		return ierrors.Wrap(ierrors.KindReadDirError, err, "writing "+sess.SettingsPath)
	}
	return nil
}
