// Package logging provides a simple leveled logging interface for the
// thumbnail subsystem and the haigaku-thumbs command.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions (render failures, shutdown timeouts)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The initial level comes from the DEBUG or LOG_LEVEL environment variables
// and can be overridden at runtime with SetLevel.
package logging
