package db

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect hides the few SQL differences between the supported engines.
// Queries are written with ? placeholders and rebound per engine.
type Dialect struct {
	Name     string
	numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite"}
	Postgres = Dialect{Name: "postgres", numbered: true}
)

// Rebind rewrites ? placeholders to $n when the engine needs it.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TimeArg converts t into the value the engine stores for a timestamp column.
// SQLite keeps RFC 3339 text so the column sorts lexically.
func (d Dialect) TimeArg(t time.Time) any {
	if d.numbered {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Time is a sql.Scanner for timestamp columns of either engine.
type Time struct {
	T *time.Time
}

func (s Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.T = time.Time{}
	case time.Time:
		*s.T = v
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}

func (s Time) parse(v string) error {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	*s.T = t
	return nil
}
