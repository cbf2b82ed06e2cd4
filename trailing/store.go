package trailing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

// Store persists State as a JSON document. JSON object keys are strings,
// so tickets round-trip through strconv on both sides.
type Store struct {
	path string
}

// NewStore targets the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the state file. A missing file is a normal first run and
// yields an empty state; a present but unreadable or corrupt file is an
// error, since silently discarding stops would re-trail from scratch.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trailing state %s: %w", s.path, err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("trailing state %s: %w", s.path, err)
	}

	state := make(State, len(raw))
	for k, stop := range raw {
		ticket, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trailing state %s: bad ticket %q: %w", s.path, k, err)
		}
		state[ticket] = stop
	}
	return state, nil
}

// Save writes the whole state, replacing whatever the file held before.
func (s *Store) Save(state State) error {
	raw := make(map[string]float64, len(state))
	for ticket, stop := range state {
		raw[strconv.FormatInt(ticket, 10)] = stop
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("trailing state %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("trailing state %s: %w", s.path, err)
	}
	return nil
}
