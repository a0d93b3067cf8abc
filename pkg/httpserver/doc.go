// Package httpserver runs the HTTP listener with graceful shutdown and
// dependency health probes.
//
// Run blocks until the supplied context ends or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout. Request contexts
// derive from the Run context, so streaming handlers such as live session
// watchers observe shutdown and return.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// HealthHandler serves a JSON report. Without probes it is a liveness check;
// with probes every dependency must pass for a 200.
package httpserver
