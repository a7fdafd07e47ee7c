// Package slog provides logging decorators for serp services.
//
// Each decorator wraps a serp interface and records the call's inputs,
// result size, duration, and error with a *slog.Logger.
package slog
