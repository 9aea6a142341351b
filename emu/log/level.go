package log

import (
	"io"
	"sync/atomic"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

var disabled atomic.Bool

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// SetOutput redirects all module loggers to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// Disable turns off logging entirely, whatever the level or module.
func Disable() {
	disabled.Store(true)
	logrus.SetOutput(io.Discard)
}
