// Package logger provides leveled terminal logging for userverify commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with semantic prefixes and colors.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only warnings and errors are shown.
//
// # Usage
//
// Create a logger with the desired verbosity:
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Provisioning keys for %s", path)
//
// Commands typically create a logger in their PersistentPreRun and
// pass it to internal functions.
package logger
