// Package logger provides structured logging for iockit using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers, and enrichment with the OpenTelemetry trace of a context.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("di")
//	log.Info("definition built", logger.DefinitionFields("orderService", deps))
package logger
