// Package observability provides OpenTelemetry tracing and metrics for the
// publisher.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, cfg.TracerConfig("techdocs", version, env), log)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "techdocs.publish")
//	defer span.End()
//
// Metrics:
//
//	m, err := observability.NewPublisherMetrics(observability.Meter("techdocs"))
//	m.RecordPublish(ctx, "awsS3", uploaded, failed, elapsed)
//
// A nil *PublisherMetrics is valid and records nothing.
package observability
