// Package logger builds the zap logger shared by the service and its commands.
//
// New reads the log section of the configuration: the level (debug, info,
// warn, error) and the encoding. The json encoding suits log collectors; console
// is used for commands run by hand.
//
// Two helpers attach correlation fields. WithRayID adds the request's ray id
// from a Fiber context, so every line written while serving a request can be
// grouped. WithRun adds a reconciliation run id, shared by the engine and the
// run report archive.
//
// # Usage
//
//	log, err := logger.New(&cfg.Log)
//	if err != nil {
//	    return err
//	}
//
//	l := logger.WithRun(log, out.RunID)
//	l.Warn("Reconciliation run completed with errors", zap.Error(err))
//
//	// In a request handler:
//	logger.WithRayID(log, c).Error("Handler failed", zap.Error(err))
package logger
