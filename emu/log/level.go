package log

import (
	"io"

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

var disabled bool

func init() {
	// Module masks do the filtering, logrus must let everything through.
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logging, warnings included.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects log output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
