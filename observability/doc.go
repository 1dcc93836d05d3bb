// Package observability provides OpenTelemetry tracing and metrics for the
// service lifecycle.
//
// Providers are optional. When telemetry is disabled the global no-op
// providers stay in place and every span and instrument below is free.
//
//	providers, err := observability.Setup(ctx, cfg.Telemetry, "billing", "1.4.0", "production")
//	defer providers.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanShutdownStep)
//	defer span.End()
//
//	observability.Lifecycle().RecordStep(ctx, "shutdown", "stop-program", err, time.Since(start))
package observability
