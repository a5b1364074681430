// Package logging configures the process-wide logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.Out = os.Stderr
	Log.Formatter = &logrus.JSONFormatter{}
	Log.AddHook(&defaultFieldsHook{})
}

// SetVerbose switches debug-level output on.
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		return
	}
	Log.SetLevel(logrus.InfoLevel)
}

type defaultFieldsHook struct{}

func (hook *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *defaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["app"] = "twintrack"
	return nil
}
