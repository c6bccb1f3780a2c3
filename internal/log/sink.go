package log

import (
	"fmt"
	"strings"
)

// SinkConfig is the configuration for Sink.
type SinkConfig struct {
	Logger Logger
	// IgnoredScopes are the record scopes that will be dropped.
	IgnoredScopes []string
	// Scope is the scope used for records received through Printf.
	Scope string
	// Verbose enables verbose records from libraries that ask for it.
	Verbose bool
}

func (c *SinkConfig) defaults() {
	if c.Logger == nil {
		c.Logger = Noop
	}
	if c.Scope == "" {
		c.Scope = "external"
	}
}

// Sink adapts log records produced by external libraries as (type, scope, message)
// triplets into a Logger.
//
// It also satisfies the golang-migrate logger interface.
type Sink struct {
	logger  Logger
	ignored map[string]struct{}
	scope   string
	verbose bool
}

// NewSink returns a new log sink.
func NewSink(cfg SinkConfig) *Sink {
	cfg.defaults()

	ignored := make(map[string]struct{}, len(cfg.IgnoredScopes))
	for _, s := range cfg.IgnoredScopes {
		ignored[s] = struct{}{}
	}

	return &Sink{
		logger:  cfg.Logger,
		ignored: ignored,
		scope:   cfg.Scope,
		verbose: cfg.Verbose,
	}
}

// Logging returns true if records of the type and scope will reach the logger.
func (s *Sink) Logging(recordType, scope string) bool {
	_, ok := s.ignored[scope]
	return !ok
}

// Log sends a record to the logger. Unknown record types are logged as info.
func (s *Sink) Log(recordType, scope, message string) {
	if !s.Logging(recordType, scope) {
		return
	}

	logger := s.logger.WithValues(Kv{"scope": scope})
	switch strings.ToLower(recordType) {
	case "debug":
		logger.Debugf("%s", message)
	case "info":
		logger.Infof("%s", message)
	case "warning", "warn":
		logger.Warningf("%s", message)
	case "error":
		logger.Errorf("%s", message)
	default:
		logger.WithValues(Kv{"type": recordType}).Infof("%s", message)
	}
}

// Printf logs a debug record in the sink scope.
func (s *Sink) Printf(format string, v ...any) {
	s.Log("debug", s.scope, strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

// Verbose returns true when verbose records are requested.
func (s *Sink) Verbose() bool { return s.verbose }
