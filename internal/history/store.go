package history

import (
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	models "github.com/CodeAndHammer/tradukilo/internal/models"
)

// Store keeps the most recent translations, newest first, bounded to a fixed
// capacity.
type Store struct {
	mu       sync.Mutex
	entries  []models.HistoryEntry
	capacity int
}

func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = constants.HistoryCapacity
	}
	return &Store{
		entries:  make([]models.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Record inserts entry at the front and evicts the oldest entries beyond
// capacity.
func (s *Store) Record(entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.Insert(s.entries, 0, entry)
	if len(s.entries) > s.capacity {
		clear(s.entries[s.capacity:])
		s.entries = s.entries[:s.capacity]
	}
}

// Recent returns a copy of the current entries, newest first. Later calls to
// Record never change a slice returned earlier.
func (s *Store) Recent() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Capacity() int {
	return s.capacity
}

// NewEntry builds a history entry with truncated previews of both texts.
func NewEntry(original, translated, source, target string, at time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		OriginalPreview:   Preview(original),
		TranslatedPreview: Preview(translated),
		SourceLang:        source,
		TargetLang:        target,
		CreatedAt:         at,
	}
}

// Preview truncates text to constants.PreviewLength characters, appending an
// ellipsis only when something was cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= constants.PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:constants.PreviewLength]) + constants.PreviewEllipsis
}
