package events

import "github.com/snipline/snipline/internal/event/topic"

// Config event topics.
const (
	// TopicConfigChanged is published after the configuration file is
	// reloaded with new values.
	TopicConfigChanged topic.Topic = "config.changed"
)

// ConfigChanged carries the settings extension features react to.
// Subscribers that need the full configuration read it from the
// application; this payload keeps them decoupled from the config
// package.
type ConfigChanged struct {
	// Path is the reloaded configuration file.
	Path string

	// StatusFormat is the line-count display format.
	StatusFormat string

	// StatusEnabled toggles the line-count display.
	StatusEnabled bool

	// Catalog names the active rule catalog.
	Catalog string

	// Policy is the expansion policy, "all" or "first".
	Policy string

	// ExpansionEnabled toggles trigger expansion.
	ExpansionEnabled bool
}
