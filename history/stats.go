package history

import "time"

// Stats is a read-only snapshot of store state, carried by every event
// and returned by GetStats.
type Stats struct {
	// EntryCount is the total number of retained entries.
	EntryCount int `json:"entryCount"`
	// FullCount and DeltaCount break EntryCount down by snapshot type.
	FullCount  int `json:"fullCount"`
	DeltaCount int `json:"deltaCount"`

	// MemoryBytes is the running total of entry EstimatedSize values.
	MemoryBytes int `json:"memoryBytes"`

	// OldestEntryAge is the age of the oldest retained entry.
	OldestEntryAge time.Duration `json:"oldestEntryAge"`

	CurrentIndex int  `json:"currentIndex"`
	CanUndo      bool `json:"canUndo"`
	CanRedo      bool `json:"canRedo"`
}

func (s *Store) statsLocked() Stats {
	st := Stats{
		EntryCount:   len(s.entries),
		MemoryBytes:  s.memoryBytes,
		CurrentIndex: s.current,
		CanUndo:      s.current > 0,
		CanRedo:      s.current < len(s.entries)-1,
	}
	for _, e := range s.entries {
		if e.Type == SnapshotFull {
			st.FullCount++
		} else {
			st.DeltaCount++
		}
	}
	if len(s.entries) > 0 {
		st.OldestEntryAge = time.Since(s.entries[0].Timestamp)
	}
	return st
}

// GetStats returns the current stats snapshot.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}
