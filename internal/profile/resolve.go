package profile

import "github.com/matheus3301/botadmin/internal/config"

const DefaultName = "main"

// Resolve picks the active profile: the flag value, then the config file's
// default_profile, then "main".
func Resolve(flagOverride string, cfg *config.Config) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg != nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return DefaultName
}
