package telemetry

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
)

// LogSink writes one line per event to a standard logger.
type LogSink struct {
	Logger *log.Logger
}

// NewLogSink returns a sink writing to logger, or to the standard logger when nil.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

// AppendEvent formats evt as key=value pairs.
func (s *LogSink) AppendEvent(_ context.Context, evt Event) error {
	var b strings.Builder
	b.WriteString(string(evt.Severity))
	b.WriteString(" ")
	b.WriteString(evt.Name)
	writePair(&b, "call", evt.CallID)
	writePair(&b, "actor", evt.Actor)
	writePair(&b, "outcome", evt.Outcome)
	writePair(&b, "trace", evt.TraceID)
	writePair(&b, "span", evt.SpanID)
	writePair(&b, "at", evt.Timestamp.UTC().Format(time.RFC3339Nano))

	keys := make([]string, 0, len(evt.Attributes))
	for key := range evt.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writePair(&b, key, evt.Attributes[key])
	}

	if s == nil || s.Logger == nil {
		log.Print(b.String())
		return nil
	}
	s.Logger.Print(b.String())
	return nil
}

func writePair(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(key)
	b.WriteString("=")
	if strings.ContainsAny(value, " \t\"=") {
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(value, `"`, `\"`))
		b.WriteString(`"`)
		return
	}
	b.WriteString(value)
}
