// Package app wires the HTTP grade sheet service: configuration,
// telemetry, the pipeline and its services, the chi router and the
// server lifecycle.
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Run returns after SIGINT, SIGTERM or cancellation of ctx, once in-flight
// requests have drained and telemetry has been flushed.
package app
