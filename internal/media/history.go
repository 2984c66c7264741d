package media

import (
	"github.com/samber/lo"

	"media-scribe/internal/domain"
)

// History is the ordered set of picked references, unique by location.
type History []domain.MediaReference

// Contains reports whether location was already recorded.
func (h History) Contains(location string) bool {
	return lo.ContainsBy(h, func(ref domain.MediaReference) bool {
		return ref.Location == location
	})
}

// Lookup returns the entry recorded for location.
func (h History) Lookup(location string) (domain.MediaReference, bool) {
	return lo.Find(h, func(ref domain.MediaReference) bool {
		return ref.Location == location
	})
}

// Add appends ref unless its location is present and reports whether it did.
func (h History) Add(ref domain.MediaReference) (History, bool) {
	if h.Contains(ref.Location) {
		return h, false
	}
	return append(h, ref), true
}
