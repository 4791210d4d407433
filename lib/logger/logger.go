/*package logger holds the zap logger used by the eclio command line tool.
Library packages never log. They return errors, and the command line tool
decides what to report.
*/
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mtx sync.Mutex
	global *zap.Logger
)

// Config sets up the logger. Level is a zap level name ("debug", "info",
// "warn", "error") and Encoding is "console" or "json".
type Config struct {
	Level string
	Encoding string
}

// DefaultConfig is used by Get if Init was never called.
var DefaultConfig = Config{ Level: "info", Encoding: "console" }

// Init replaces the global logger. Log messages go to stderr so they never
// mix with the tables written to stdout.
func Init(cfg Config) error {
	log, err := newLogger(cfg)
	if err != nil { return err }

	mtx.Lock()
	defer mtx.Unlock()
	if global != nil { global.Sync() }
	global = log
	return nil
}

func newLogger(cfg Config) (*zap.Logger, error) {
	if cfg.Level == "" { cfg.Level = DefaultConfig.Level }
	if cfg.Encoding == "" { cfg.Encoding = DefaultConfig.Encoding }

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a valid LogLevel. Valid levels " +
			"are debug, info, warn and error.", cfg.Level)
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	zcfg := zap.Config{
		Level: zap.NewAtomicLevelAt(level),
		Encoding: cfg.Encoding,
		EncoderConfig: enc,
		OutputPaths: []string{ "stderr" },
		ErrorOutputPaths: []string{ "stderr" },
	}
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("Could not build a logger with encoding " +
			"'%s': %s", cfg.Encoding, err.Error())
	}
	return log, nil
}

// Get returns the global logger, creating one from DefaultConfig if needed.
func Get() *zap.Logger {
	mtx.Lock()
	defer mtx.Unlock()
	if global == nil {
		log, err := newLogger(DefaultConfig)
		if err != nil { log = zap.NewNop() }
		global = log
	}
	return global
}

// Sugar returns the global logger with a printf-style interface.
func Sugar() *zap.SugaredLogger { return Get().Sugar() }

// Sync flushes the global logger.
func Sync() {
	mtx.Lock()
	defer mtx.Unlock()
	if global != nil { global.Sync() }
}
