package logger

import (
	"log"

	"go.uber.org/zap"
)

var Log *zap.Logger = zap.NewNop()

// Init builds the global logger. Production mode emits JSON; anything
// else gets the human-readable development encoder.
func Init(env string) {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	Log = l
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	_ = Log.Sync()
}
