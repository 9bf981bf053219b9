package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osintnator/osintnator/internal/query"
)

// Kind denotes the type of milestone represented by an Event.
type Kind string

// Supported event kinds.
const (
	KindRunStart Kind = "RUN_START"
	KindNote     Kind = "NOTE"
	KindHit      Kind = "HIT"
	KindTaskDone Kind = "TASK_DONE"
	KindRunDone  Kind = "RUN_DONE"
)

// Event captures a single milestone of a lookup run.
type Event struct {
	// RunID uniquely identifies one orchestration run.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Kind denotes which milestone occurred.
	Kind Kind
	// Site scopes task and hit events to a source label.
	Site string
	// Hit carries the found record for KindHit events.
	Hit *query.Hit
	// Note lets emitters attach low-volume human-readable context.
	Note string
	// Completed and Total track task progress through the run.
	Completed int
	Total     int
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Kind {
	case KindRunStart, KindNote, KindRunDone:
	case KindHit:
		if e.Hit == nil {
			return errors.New("hit event requires a hit")
		}
	case KindTaskDone:
		if e.Site == "" {
			return errors.New("task done requires site")
		}
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if e.Completed < 0 || e.Total < 0 {
		return errors.New("counters must be >= 0")
	}
	if e.Total > 0 && e.Completed > e.Total {
		return errors.New("completed exceeds total")
	}
	return nil
}
