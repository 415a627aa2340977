package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/hackgods/clinic-local-store/internal/kv"
)

func TestGetDefaults(t *testing.T) {
	got, err := New(kv.NewMemory()).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, Defaults()) {
		t.Errorf("Get = %+v, want %+v", got, Defaults())
	}
	if got.SearchHistory == nil || got.TemporaryData == nil {
		t.Error("defaults should be empty, not nil")
	}
}

func TestAddSearchTermMovesExistingToFront(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	for _, term := range []string{"bodoque", "mario", "juanin"} {
		if _, err := s.AddSearchTerm(ctx, term); err != nil {
			t.Fatalf("AddSearchTerm(%q): %v", term, err)
		}
	}

	st, _ := s.AddSearchTerm(ctx, "bodoque")
	want := []string{"bodoque", "juanin", "mario"}
	if !reflect.DeepEqual(st.SearchHistory, want) {
		t.Errorf("history = %v, want %v", st.SearchHistory, want)
	}
}

func TestAddSearchTermCapEvictsOldest(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		s.AddSearchTerm(ctx, fmt.Sprintf("term-%d", i))
	}

	st, _ := s.Get(ctx)
	if len(st.SearchHistory) != MaxSearchHistory {
		t.Fatalf("len = %d, want %d", len(st.SearchHistory), MaxSearchHistory)
	}
	if st.SearchHistory[0] != "term-12" || st.SearchHistory[9] != "term-3" {
		t.Errorf("history = %v", st.SearchHistory)
	}
}

func TestAddSearchTermBlankIgnored(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	s.AddSearchTerm(ctx, "vacuna")
	st, err := s.AddSearchTerm(ctx, "   ")
	if err != nil {
		t.Fatalf("AddSearchTerm blank: %v", err)
	}
	if !reflect.DeepEqual(st.SearchHistory, []string{"vacuna"}) {
		t.Errorf("history = %v", st.SearchHistory)
	}
}

// Random sequences must always leave a history with no duplicates, at most
// ten entries, ordered by most recent insertion.
func TestSearchHistoryInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(kv.NewMemory())
	ctx := context.Background()

	var added []string
	for i := 0; i < 300; i++ {
		term := fmt.Sprintf("t%d", rng.Intn(15))
		added = append(added, term)

		st, err := s.AddSearchTerm(ctx, term)
		if err != nil {
			t.Fatalf("AddSearchTerm: %v", err)
		}

		want := expectedHistory(added)
		if !reflect.DeepEqual(st.SearchHistory, want) {
			t.Fatalf("step %d: history = %v, want %v", i, st.SearchHistory, want)
		}
	}
}

func expectedHistory(added []string) []string {
	seen := map[string]bool{}
	var out []string
	for i := len(added) - 1; i >= 0 && len(out) < MaxSearchHistory; i-- {
		if seen[added[i]] {
			continue
		}
		seen[added[i]] = true
		out = append(out, added[i])
	}
	return out
}

func TestClearSearchHistoryKeepsOtherFields(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	s.SetLastVisitedPage(ctx, "/citas")
	s.SetTemporaryValue(ctx, "draft", "Dolor de cabeza")
	s.AddSearchTerm(ctx, "nick")

	st, err := s.ClearSearchHistory(ctx)
	if err != nil {
		t.Fatalf("ClearSearchHistory: %v", err)
	}
	if len(st.SearchHistory) != 0 || st.SearchHistory == nil {
		t.Errorf("history = %#v, want empty", st.SearchHistory)
	}
	if st.LastVisitedPage != "/citas" || st.TemporaryData["draft"] != "Dolor de cabeza" {
		t.Errorf("other fields changed: %+v", st)
	}
}

func TestSetField(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	st, err := s.SetField(ctx, "searchHistory", []any{"a", "b", "a", " ", "c"})
	if err != nil {
		t.Fatalf("SetField searchHistory: %v", err)
	}
	if !reflect.DeepEqual(st.SearchHistory, []string{"a", "b", "c"}) {
		t.Errorf("history = %v", st.SearchHistory)
	}

	tests := []struct {
		key   string
		value any
		want  error
	}{
		{"cart", 1, ErrUnknownField},
		{"lastVisitedPage", 3, ErrInvalidValue},
		{"searchHistory", []any{"a", 2}, ErrInvalidValue},
		{"temporaryData", "x", ErrInvalidValue},
	}
	for _, tt := range tests {
		if _, err := s.SetField(ctx, tt.key, tt.value); !errors.Is(err, tt.want) {
			t.Errorf("SetField(%q) = %v, want %v", tt.key, err, tt.want)
		}
	}
}

func TestSaveNormalizesHistory(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	long := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		long = append(long, fmt.Sprintf("q%d", i%12))
	}
	if err := s.Save(ctx, State{LastVisitedPage: "/", SearchHistory: long}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st, _ := s.Get(ctx)
	if len(st.SearchHistory) != MaxSearchHistory || st.SearchHistory[0] != "q0" {
		t.Errorf("history = %v", st.SearchHistory)
	}
	if st.TemporaryData == nil {
		t.Error("TemporaryData should default to an empty map")
	}
}

func TestTemporaryValueRemove(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	s.SetTemporaryValue(ctx, "filter", "pendiente")
	st, _ := s.SetTemporaryValue(ctx, "filter", nil)
	if _, ok := st.TemporaryData["filter"]; ok {
		t.Error("nil value should remove the entry")
	}
}

func TestEnd(t *testing.T) {
	s := New(kv.NewMemory())
	ctx := context.Background()

	s.AddSearchTerm(ctx, "simi")
	if err := s.End(ctx); err != nil {
		t.Fatalf("End: %v", err)
	}
	st, _ := s.Get(ctx)
	if !reflect.DeepEqual(st, Defaults()) {
		t.Errorf("after End = %+v", st)
	}
}
