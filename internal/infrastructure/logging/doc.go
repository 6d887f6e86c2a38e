// Package logging provides structured logging for Haunt Logic.
//
// This package wraps Go's standard log/slog package so every component
// (router, prop tasks, dispatcher, mixer) logs the same way.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "file"     # stdout, stderr, file
//	  file:
//	    path: "./logs/hauntlogic.log"
//	    max_size: 50     # megabytes before rotation
//	    max_backups: 5
//	    max_age: 14      # days
//
// File output is rotated by lumberjack, so a long show night cannot fill
// the controller's disk.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("published", "topic", topic, "payload", cmd)
package logging
