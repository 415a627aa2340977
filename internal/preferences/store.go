// Package preferences keeps the current user's durable UI preferences as
// one JSON blob.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackgods/clinic-local-store/internal/kv"
)

// Key is the blob key the preferences live under.
const Key = "hospital_user_preferences"

var (
	ErrUnknownField = errors.New("unknown preference field")
	ErrInvalidValue = errors.New("invalid preference value")
)

type Preferences struct {
	Theme         string `json:"theme"`
	FontSize      string `json:"fontSize"`
	Notifications bool   `json:"notifications"`
	Language      string `json:"language"`
}

func Defaults() Preferences {
	return Preferences{
		Theme:         "light",
		FontSize:      "medium",
		Notifications: true,
		Language:      "es",
	}
}

type Store struct {
	blob *kv.JSONBlob[Preferences]
}

// New stores preferences in backend, which must be durable.
func New(backend kv.Store) *Store {
	return &Store{blob: kv.NewJSONBlob(backend, Key, Defaults)}
}

// WithLocker serialises writes across processes as well.
func (s *Store) WithLocker(l kv.Locker) *Store {
	s.blob.WithLocker(l)
	return s
}

// Get never fails to produce a value: on a backend error it returns the
// defaults together with the error.
func (s *Store) Get(ctx context.Context) (Preferences, error) {
	return s.blob.Load(ctx)
}

func (s *Store) Save(ctx context.Context, p Preferences) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.blob.Save(ctx, p)
}

// SetField changes one preference and persists the whole object.
func (s *Store) SetField(ctx context.Context, key string, value any) (Preferences, error) {
	return s.blob.Update(ctx, func(p *Preferences) error {
		return p.set(key, value)
	})
}

func (p Preferences) validate() error {
	for field, v := range map[string]string{"theme": p.Theme, "fontSize": p.FontSize, "language": p.Language} {
		if v == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, field)
		}
	}
	return nil
}

func (p *Preferences) set(key string, value any) error {
	switch key {
	case "theme":
		return setString(&p.Theme, key, value)
	case "fontSize":
		return setString(&p.FontSize, key, value)
	case "language":
		return setString(&p.Language, key, value)
	case "notifications":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: notifications wants a bool, got %T", ErrInvalidValue, value)
		}
		p.Notifications = b
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, key)
}

func setString(dst *string, key string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s wants a string, got %T", ErrInvalidValue, key, value)
	}
	if s == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
	}
	*dst = s
	return nil
}
