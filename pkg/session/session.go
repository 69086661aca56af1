// Package session is the Session Store: the per-debug-session directory
// layout and its settings record. Grounded on
// original_source/src/setting.rs (Setting/SettingHandler) and
// original_source/src/setting_yaml.rs (the on-disk YAML shape), restated
// using github.com/jesseduffield/yaml the way lazydocker persists its own
// config.
package session

import "path/filepath"

// Session is a debug session's directory layout, per spec.md §3.
type Session struct {
	Name          string
	BaseDir       string
	PrivateUpper  string
	PrivateWork   string
	PrivateMerged string
	SettingsPath  string
}

// NewSession derives a Session's paths under sessionsRoot.
func NewSession(sessionsRoot, name string) Session {
	base := filepath.Join(sessionsRoot, name)
	return Session{
		Name:          name,
		BaseDir:       base,
		PrivateUpper:  filepath.Join(base, "upper"),
		PrivateWork:   filepath.Join(base, "worker"),
		PrivateMerged: filepath.Join(base, "merged"),
		SettingsPath:  filepath.Join(base, "setting.yaml"),
	}
}
