package metadata

import (
	"strings"
	"time"
)

type Status string

const (
	StatusOngoing Status = "Ongoing"
	StatusEnded   Status = "Ended"
	StatusUnknown Status = "Unknown"
)

// PlaceholderImage marks an entry whose artwork could not be fetched
const PlaceholderImage = "placeholder.jpg"

// Entry is the cached metadata of a single series
type Entry struct {
	Key         string    `json:"key"`
	ImagePath   string    `json:"imagePath,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Sentinel is the placeholder returned when metadata is temporarily unavailable. It is never persisted.
func Sentinel(key string) Entry {
	return Entry{
		Key:       key,
		ImagePath: PlaceholderImage,
		Status:    StatusUnknown,
	}
}

// Unavailable reports whether e is a sentinel rather than fetched data
func (e Entry) Unavailable() bool {
	return e.ImagePath == PlaceholderImage && e.FetchedAt.IsZero()
}

// statusFromCatalog maps catalog airing states onto Status
func statusFromCatalog(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currently airing", "not yet aired":
		return StatusOngoing
	case "finished airing":
		return StatusEnded
	default:
		return StatusUnknown
	}
}
