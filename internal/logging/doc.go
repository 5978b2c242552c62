// Package logging provides structured logging for netscope.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the tool. Logging is silent unless a level is
// given, either by the log_level config key or the NETSCOPE_LOG_LEVEL
// environment variable, so command output on stdout stays clean.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (per-instance resolution, correlation, frames)
//   - Info: Normal operations (session start/stop, device changes, connections)
//   - Warn: Non-fatal issues (browse failures, dropped clients)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Discovery started",
//	    zap.String("session_id", id.String()),
//	    zap.String("domain", "local."),
//	)
//
// # Specialized Logging
//
// Discovery Logging:
//
//	logging.LogBrowseEvent("_ipp._tcp", "category_added", nil)
//	logging.LogDeviceChange("updated", "Office._ipp._tcp.local.", "LaserJet 400")
//
// Server Logging:
//
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogHTTPRequest(remoteAddr, r.Method, r.URL.Path, status)
//	logging.LogWebSocketMessage(remoteAddr, "sent", msgType, payload)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize(cfg.LogLevel); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Components that accept a *zap.Logger default to GetLogger(), so tests can
// inject zaptest loggers instead.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
