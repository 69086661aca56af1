// Package config holds injesh's ambient, non-persisted process
// configuration — version/build metadata and the debug flag. Grounded on
// lazydocker's pkg/config/app_config.go's AppConfig, trimmed to the
// ambient fields this spec actually needs: unlike the teacher, injesh has
// no global, user-editable config.yml (the only persisted, user-editable
// document in this spec is the per-session setting.yaml owned by
// pkg/session — see SPEC_FULL.md §4.8.3).
package config

import (
	"github.com/injesh/injesh/pkg/identity"
)

// AppConfig is the process-wide, non-persisted configuration built once
// at entry.
type AppConfig struct {
	Version     string
	Commit      string
	Date        string
	BuildSource string
	Debug       bool
	Identity    identity.Identity
}

// NewAppConfig mirrors lazydocker's config.NewAppConfig constructor
// shape, resolving Identity as part of construction.
func NewAppConfig(version, commit, date, buildSource string, debug bool) (*AppConfig, error) {
	id, err := identity.Resolve()
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Version:     version,
		Commit:      commit,
		Date:        date,
		BuildSource: buildSource,
		Debug:       debug,
		Identity:    id,
	}, nil
}
