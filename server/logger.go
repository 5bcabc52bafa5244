package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/logger"
	"github.com/viant/mcp-protocol/schema"
)

// Logger sends notifications/message to the client for levels at or above the one set with logging/setLevel
type Logger struct {
	name     string
	level    *schema.LoggingLevel
	notifier transport.Notifier
}

// Logger returns a logger with the same level and notifier under another name
func (l *Logger) Logger(name string) logger.Logger {
	return &Logger{name: name, level: l.level, notifier: l.notifier}
}

// Enabled returns true if the client asked for messages at level
func (l *Logger) Enabled(level schema.LoggingLevel) bool {
	return l.level != nil && *l.level != "" && l.level.Ordinal() <= level.Ordinal()
}

func (l *Logger) log(ctx context.Context, level schema.LoggingLevel, data interface{}) error {
	if !l.Enabled(level) {
		return nil
	}
	params, err := json.Marshal(schema.LoggingMessageNotificationParams{
		Level:  level,
		Logger: &l.name,
		Data:   data,
	})
	if err != nil {
		return err
	}
	return l.notifier.Notify(ctx, &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: schema.MethodNotificationMessage, Params: params})
}

func (l *Logger) Debug(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Debug, data)
}

func (l *Logger) Info(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Info, data)
}

func (l *Logger) Notice(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Notice, data)
}

func (l *Logger) Warning(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Warning, data)
}

func (l *Logger) Error(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Err, data)
}

func (l *Logger) Critical(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Critical, data)
}

func (l *Logger) Alert(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Alert, data)
}

func (l *Logger) Emergency(ctx context.Context, data interface{}) error {
	return l.log(ctx, schema.Emergency, data)
}

func NewLogger(name string, level *schema.LoggingLevel, notifier transport.Notifier) *Logger {
	return &Logger{name: name, level: level, notifier: notifier}
}

var _ logger.Logger = &Logger{}
