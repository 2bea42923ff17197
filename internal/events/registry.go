package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// graph
	"graph.built":   {},
	"graph.skipped": {},
	"graph.empty":   {},

	// customtype
	"customtype.matched": {},
	"customtype.skipped": {},

	// settings
	"settings.loaded": {},
	"settings.error":  {},

	// sink
	"sink.published": {},
	"sink.error":     {},

	// render requests
	"render.requested": {},
	"render.rejected":  {},

	// watch
	"watch.reload": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
