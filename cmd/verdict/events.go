package main

import (
	"context"

	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/verdict"
)

// eventLevels assigns a log level and message to each pipeline signal.
var eventLevels = map[capitan.Signal]struct {
	level   zapcore.Level
	message string
}{
	verdict.BatchStarted:          {zapcore.InfoLevel, "batch started"},
	verdict.BatchCompleted:        {zapcore.InfoLevel, "batch completed"},
	verdict.ConfigurationFailed:   {zapcore.ErrorLevel, "configuration rejected"},
	verdict.DispatchStarted:       {zapcore.DebugLevel, "request admitted"},
	verdict.DispatchCompleted:     {zapcore.DebugLevel, "request finished"},
	verdict.ProviderCallStarted:   {zapcore.DebugLevel, "provider call started"},
	verdict.ProviderCallCompleted: {zapcore.DebugLevel, "provider call completed"},
	verdict.ProviderCallFailed:    {zapcore.WarnLevel, "provider call failed"},
	verdict.ResultParsed:          {zapcore.DebugLevel, "result parsed"},
}

// bridgeEvents forwards pipeline events to the logger until the returned func is called.
func bridgeEvents(logger *zap.Logger) func() {
	observer := capitan.Observe(func(_ context.Context, e *capitan.Event) {
		entry, ok := eventLevels[e.Signal()]
		if !ok {
			return
		}
		if ce := logger.Check(entry.level, entry.message); ce != nil {
			ce.Write(eventFields(e)...)
		}
	})
	return func() { observer.Close() }
}

// eventFields copies the known keys present on an event.
func eventFields(e *capitan.Event) []zap.Field {
	var fields []zap.Field

	if v, ok := verdict.BatchIDKey.From(e); ok {
		fields = append(fields, zap.String("batch_id", v))
	}
	if v, ok := verdict.ProviderKey.From(e); ok {
		fields = append(fields, zap.String("provider", v))
	}
	if v, ok := verdict.RequestIDKey.From(e); ok {
		fields = append(fields, zap.String("request_id", v))
	}
	if v, ok := verdict.DecodeKey.From(e); ok {
		fields = append(fields, zap.String("decode", v))
	}
	if v, ok := verdict.ErrorKey.From(e); ok {
		fields = append(fields, zap.String("error", v))
	}
	if v, ok := verdict.BatchSizeKey.From(e); ok {
		fields = append(fields, zap.Int("size", v))
	}
	if v, ok := verdict.ConcurrencyKey.From(e); ok {
		fields = append(fields, zap.Int("concurrency", v))
	}
	if v, ok := verdict.IndexKey.From(e); ok {
		fields = append(fields, zap.Int("index", v))
	}
	if v, ok := verdict.InFlightKey.From(e); ok {
		fields = append(fields, zap.Int("in_flight", v))
	}
	if v, ok := verdict.CodeKey.From(e); ok {
		fields = append(fields, zap.Int("code", v))
	}
	if v, ok := verdict.AttemptKey.From(e); ok {
		fields = append(fields, zap.Int("attempt", v))
	}
	if v, ok := verdict.HTTPStatusCodeKey.From(e); ok {
		fields = append(fields, zap.Int("status", v))
	}
	if v, ok := verdict.DurationMsKey.From(e); ok {
		fields = append(fields, zap.Int("duration_ms", v))
	}

	return fields
}
