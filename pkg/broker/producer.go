package broker

import (
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// NewWriter builds an async kafka writer that logs through l. The topic is
// set per message.
func NewWriter(l *slog.Logger, brokers []string) *kafka.Writer {
	l = l.WithGroup("kafka")

	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		Async:                  true,
		Logger:                 &infoLogger{l: l},
		ErrorLogger:            &errorLogger{l: l},
		AllowAutoTopicCreation: true,
	}
}

type infoLogger struct {
	l *slog.Logger
}

func (i *infoLogger) Printf(format string, args ...interface{}) {
	i.l.Debug(fmt.Sprintf(format, args...))
}

type errorLogger struct {
	l *slog.Logger
}

func (e *errorLogger) Printf(format string, args ...interface{}) {
	e.l.Error(fmt.Sprintf(format, args...))
}
