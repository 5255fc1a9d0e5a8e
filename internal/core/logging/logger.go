package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns a child of the global logger tagged with cmp=name. Call it
// after the global logger is configured so hooks such as ContextHook carry over.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
