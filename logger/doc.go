// Package logger provides structured logging for the techdocs publisher
// using zerolog.
//
// It supports JSON and console output, log level configuration, and
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
//	log := logger.NewDefault("techdocs").WithComponent("publisher")
//	log.Info("bundle published", logger.Fields(logger.FieldEntity, key))
package logger
