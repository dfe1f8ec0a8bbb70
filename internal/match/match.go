// Package match resolves an ambiguous event reference (title fragment,
// start time) to exactly one event among already-fetched candidates.
package match

import (
	"errors"
	"strings"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
)

// ErrAmbiguousOrNotFound means the reference did not narrow the
// candidates to exactly one event. The caller must ask the user instead
// of guessing.
var ErrAmbiguousOrNotFound = errors.New("event reference is ambiguous or matches nothing")

// Ref is a partial event reference from an intent call
type Ref struct {
	Title string     // optional title fragment
	Start *time.Time // optional exact start time
}

// Resolve narrows candidates to one event, short-circuiting at the
// first stage that leaves exactly one:
//
//  1. case-insensitive title substring filter (substring, not whole
//     word: Korean text has no reliable word boundaries)
//  2. exact start-time filter on the remaining set
//  3. single-candidate fallback: one candidate overall wins regardless
//     of match quality
func Resolve(ref Ref, candidates []calendar.Event) (calendar.Event, error) {
	filtered := candidates

	if ref.Title != "" {
		needle := strings.ToLower(ref.Title)
		var byTitle []calendar.Event
		for _, e := range filtered {
			if strings.Contains(strings.ToLower(e.Summary), needle) {
				byTitle = append(byTitle, e)
			}
		}
		if len(byTitle) == 1 {
			return byTitle[0], nil
		}
		filtered = byTitle
	}

	if ref.Start != nil {
		var byTime []calendar.Event
		for _, e := range filtered {
			if e.Start.Equal(*ref.Start) {
				byTime = append(byTime, e)
			}
		}
		if len(byTime) == 1 {
			return byTime[0], nil
		}
		filtered = byTime
	}

	if len(filtered) == 1 {
		return filtered[0], nil
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	return calendar.Event{}, ErrAmbiguousOrNotFound
}
