package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var buffer = NewRingBuffer(256)

// Sink persists events. The Postgres client implements it.
type Sink interface {
	Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error
}

var (
	logger      = zap.NewNop()
	sink        Sink
	mu          sync.RWMutex
	sinkErrored bool
)

// SetLogger routes emitted events to l. A nil logger silences them.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetSink sets where events are persisted. Nil disables persistence.
func SetSink(s Sink) {
	mu.Lock()
	sink = s
	sinkErrored = false
	mu.Unlock()
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emit records a whitelisted event: ring buffer, logger, subscribers and,
// when set, the sink. The session field, if present, tags the sink row.
func Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	e := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	buffer.Add(e)
	broadcast(e)

	mu.RLock()
	l := logger
	s := sink
	errored := sinkErrored
	mu.RUnlock()

	log(l, e)

	if s != nil {
		session, _ := fields["session"].(string)
		if err := s.Append(ts, level, name, msg, fields, session); err != nil && !errored {
			// Report once, straight to the buffer: emitting would hit the
			// failing sink again.
			mu.Lock()
			sinkErrored = true
			mu.Unlock()

			errEvent := Event{
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Level:     "error",
				Name:      "system.error",
				Message:   "event sink append failed",
				Fields:    map[string]interface{}{"error": err.Error()},
			}
			buffer.Add(errEvent)
			log(l, errEvent)
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return b, nil
}

func log(l *zap.Logger, e Event) {
	lvl, err := zapcore.ParseLevel(e.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	ce := l.Check(lvl, e.Message)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, len(e.Fields)+1)
	fields = append(fields, zap.String("event", e.Name))
	for k, v := range e.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	ce.Write(fields...)
}

func Snapshot() []Event {
	return buffer.Snapshot()
}

// Clear resets the event buffer. Used for testing.
func Clear() {
	buffer.Clear()
}

// TotalCount is the number of events emitted since the last Clear.
func TotalCount() int {
	return buffer.TotalCount()
}
