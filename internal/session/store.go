// Package session keeps ephemeral per-session UI state: the last visited
// page, recent search terms and a free-form bag of temporary values.
//
// The backend must be session-scoped (kv.Memory, or kv.RedisStore with a
// ttl). Nothing here is ever copied to durable storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hackgods/clinic-local-store/internal/kv"
)

// Key is the blob key the session state lives under.
const Key = "hospital_session_data"

// MaxSearchHistory caps the number of remembered search terms.
const MaxSearchHistory = 10

var (
	ErrUnknownField = errors.New("unknown session field")
	ErrInvalidValue = errors.New("invalid session value")
)

type State struct {
	LastVisitedPage string         `json:"lastVisitedPage"`
	SearchHistory   []string       `json:"searchHistory"`
	TemporaryData   map[string]any `json:"temporaryData"`
}

func Defaults() State {
	return State{
		LastVisitedPage: "/",
		SearchHistory:   []string{},
		TemporaryData:   map[string]any{},
	}
}

type Store struct {
	blob *kv.JSONBlob[State]
}

func New(backend kv.Store) *Store {
	return &Store{blob: kv.NewJSONBlob(backend, Key, Defaults)}
}

// WithLocker serialises writes across processes as well.
func (s *Store) WithLocker(l kv.Locker) *Store {
	s.blob.WithLocker(l)
	return s
}

// Get returns the defaults when nothing was saved in this session yet.
func (s *Store) Get(ctx context.Context) (State, error) {
	st, err := s.blob.Load(ctx)
	st.normalize()
	return st, err
}

func (s *Store) Save(ctx context.Context, st State) error {
	st.normalize()
	return s.blob.Save(ctx, st)
}

// SetField replaces one top-level field.
func (s *Store) SetField(ctx context.Context, key string, value any) (State, error) {
	return s.update(ctx, func(st *State) error {
		return st.set(key, value)
	})
}

func (s *Store) SetLastVisitedPage(ctx context.Context, page string) (State, error) {
	return s.update(ctx, func(st *State) error {
		st.LastVisitedPage = page
		return nil
	})
}

// SetTemporaryValue stores one entry of the temporary bag; a nil value
// removes the entry.
func (s *Store) SetTemporaryValue(ctx context.Context, key string, value any) (State, error) {
	return s.update(ctx, func(st *State) error {
		if value == nil {
			delete(st.TemporaryData, key)
			return nil
		}
		st.TemporaryData[key] = value
		return nil
	})
}

// AddSearchTerm puts term at the front of the history. A term already in the
// history moves to the front; the oldest terms fall off past MaxSearchHistory.
// Blank terms are ignored.
func (s *Store) AddSearchTerm(ctx context.Context, term string) (State, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.Get(ctx)
	}
	return s.update(ctx, func(st *State) error {
		st.SearchHistory = PushTerm(st.SearchHistory, term)
		return nil
	})
}

func (s *Store) ClearSearchHistory(ctx context.Context) (State, error) {
	return s.update(ctx, func(st *State) error {
		st.SearchHistory = []string{}
		return nil
	})
}

// End discards the session; the next Get sees the defaults.
func (s *Store) End(ctx context.Context) error {
	return s.blob.Delete(ctx)
}

func (s *Store) update(ctx context.Context, fn func(*State) error) (State, error) {
	return s.blob.Update(ctx, func(st *State) error {
		st.normalize()
		if err := fn(st); err != nil {
			return err
		}
		st.normalize()
		return nil
	})
}

// PushTerm returns history with term in front, without duplicates and with
// at most MaxSearchHistory entries.
func PushTerm(history []string, term string) []string {
	out := make([]string, 0, MaxSearchHistory)
	out = append(out, term)
	for _, h := range history {
		if h == term {
			continue
		}
		if len(out) == MaxSearchHistory {
			break
		}
		out = append(out, h)
	}
	return out
}

// normalize enforces the history invariant on whatever was stored or passed
// in, keeping the first occurrence of each term.
func (st *State) normalize() {
	if st.TemporaryData == nil {
		st.TemporaryData = map[string]any{}
	}

	seen := make(map[string]bool, len(st.SearchHistory))
	clean := make([]string, 0, len(st.SearchHistory))
	for _, h := range st.SearchHistory {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		clean = append(clean, h)
		if len(clean) == MaxSearchHistory {
			break
		}
	}
	st.SearchHistory = clean
}

func (st *State) set(key string, value any) error {
	switch key {
	case "lastVisitedPage":
		page, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: lastVisitedPage wants a string, got %T", ErrInvalidValue, value)
		}
		st.LastVisitedPage = page
	case "searchHistory":
		terms, err := toStrings(value)
		if err != nil {
			return err
		}
		st.SearchHistory = terms
	case "temporaryData":
		bag, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: temporaryData wants an object, got %T", ErrInvalidValue, value)
		}
		st.TemporaryData = bag
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}

// toStrings accepts []string or a decoded JSON array of strings.
func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: searchHistory entries must be strings, got %T", ErrInvalidValue, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: searchHistory wants a list of strings, got %T", ErrInvalidValue, value)
}
