// Package logger builds context-aware *slog.Logger instances and provides
// attribute helpers shared by the session guard and preference packages.
//
// New creates a logger from functional options (format, level, static
// attributes, context extractors). The handler is wrapped in
// LogHandlerDecorator, which appends attributes stored with WithContextAttrs
// and those produced by registered ContextExtractor callbacks on every record.
//
// # Usage
//
//	log := logger.New(logger.WithEnvironment("production", "interviewkit"))
//	logger.SetAsDefault(log)
//
//	ctx = logger.WithContextAttrs(ctx, logger.GuardID(id))
//	log.DebugContext(ctx, "session verified",
//	    logger.Component("sessionguard"),
//	    logger.UserID(userID),
//	)
//
// Environment-driven setup goes through Config and FromConfig:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.FromConfig(cfg)...)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
