// Package logger provides structured logging for svcapp using zerolog.
//
// It supports JSON and console output, per-instance log levels, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.ForEnvironment("production", "billing", cfg.Logging)
//	log.WithComponent("shutdown").Info("STOPPING PROGRAM...")
//	log.LogError(err, logger.Fields("step", "stop-program"))
package logger
