package logsvc

import (
	"io"

	"github.com/trezcool/ratiba/core"
)

// NewLogger returns the application logger: zerolog locally, wrapped by rollbar when a token is configured.
func NewLogger(out io.Writer, conf *core.Config) core.Logger {
	local := NewZerologLogger(out, conf.Log.Level, conf.Log.Pretty)
	if conf.RollbarToken == "" || conf.TestMode {
		return local
	}
	rl := NewRollbarLogger(local, conf)
	rl.Enable(true)
	return rl
}
