package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger returns a quiet logger for tests, writing to stdout so go
// test interleaves it with the test output.
//
// XAMP_TEST_DEBUG (any value but "" or "0") lowers the level to debug.
// XAMP_TEST_LOG_FORMAT=json switches to the JSON handler.
func NewTestLogger() *slog.Logger {
	return NewLogger(testConfig())
}

func testConfig() Config {
	cfg := Config{
		Level:  slog.LevelWarn,
		Format: "text",
		Output: os.Stdout,
	}
	if v := os.Getenv("XAMP_TEST_DEBUG"); v != "" && v != "0" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("XAMP_TEST_LOG_FORMAT") == "json" {
		cfg.Format = "json"
	}
	return cfg
}
