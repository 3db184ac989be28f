package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/coredata/pkg/domain"
	"github.com/aretw0/coredata/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	ports.RecordStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks the values of record fields whose names match any pattern
// (e.g. "email", "password") before they are stored. Nested objects and arrays are masked too.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &redactMiddleware{RecordStore: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Dispatch(ctx context.Context, action domain.Action) error {
	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		records := make([]domain.Record, len(a.Records))
		for i, record := range a.Records {
			records[i] = m.mask(record)
		}
		a.Records = records
		return m.RecordStore.Dispatch(ctx, a)
	case domain.ReceiveAutosave:
		a.Autosave = m.mask(a.Autosave)
		return m.RecordStore.Dispatch(ctx, a)
	default:
		return m.RecordStore.Dispatch(ctx, action)
	}
}

// mask returns a masked deep copy; the dispatched record is left untouched.
func (m *redactMiddleware) mask(record domain.Record) domain.Record {
	return domain.Record(maskMap(record, m.patterns))
}

func maskMap(in map[string]any, patterns []*regexp.Regexp) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if matchesAny(k, patterns) {
			out[k] = Mask
			continue
		}
		out[k] = maskValue(v, patterns)
	}
	return out
}

func maskValue(v any, patterns []*regexp.Regexp) any {
	switch sub := v.(type) {
	case map[string]any:
		return maskMap(sub, patterns)
	case domain.Record:
		return maskMap(sub, patterns)
	case []any:
		out := make([]any, len(sub))
		for i, item := range sub {
			out[i] = maskValue(item, patterns)
		}
		return out
	default:
		return v
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
