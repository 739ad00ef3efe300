// Package logger provides named, leveled loggers for the application.
// Every component asks for a logger by name (e.g. "rest", "keyspace") so
// log lines can be traced back to the subsystem that emitted them.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*logrus.Entry)
	root    = logrus.New()
)

func init() {
	root.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"comp"},
	})
	root.SetOutput(os.Stdout)
	root.SetLevel(logrus.InfoLevel)
}

// Get returns the logger for the given component name. Loggers are cached,
// so repeated calls with the same name return the same entry.
func Get(name string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := root.WithField("comp", name)
	loggers[name] = l
	return l
}

// SetLevel configures the level for all loggers.
// Accepted values: debug, info, warn, error.
func SetLevel(level string) error {
	parsed, err := parseLevel(level)
	if err != nil {
		return err
	}
	root.SetLevel(parsed)
	return nil
}

// parseLevel converts a string level to a logrus.Level
func parseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warning", "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}
