// Package migrate upgrades persisted store snapshots to the current schema
// version. Migration never fails: anything it cannot read becomes an empty
// snapshot.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// VersionField is the snapshot field carrying the schema version.
const VersionField = "version"

// BaselineVersion is the version of the empty snapshot used on first run and
// whenever a payload has to be discarded.
const BaselineVersion = 1

var (
	// ErrInvalidChain indicates a step list that does not cover every version exactly once.
	ErrInvalidChain = errors.New("invalid migration chain")
	// ErrUnreadable indicates a payload that could not be migrated and was replaced.
	ErrUnreadable = errors.New("unreadable snapshot")
)

// Document is a decoded snapshot. Numbers are kept as json.Number.
type Document map[string]any

// Version returns the document's version, or 0 when it is missing or not an integer.
func (d Document) Version() int {
	v, _ := versionOf(d[VersionField])
	return v
}

// Entities returns the entity sequence stored under field.
func (d Document) Entities(field string) []any {
	items, _ := d[field].([]any)
	return items
}

// Step upgrades a document from version From to From+1. Apply must be total;
// a panic discards the payload.
type Step struct {
	From  int
	Apply func(Document) Document
}

// Chain is an ordered, gap-free list of steps ending at the current version.
type Chain struct {
	field   string
	current int
	steps   []Step
}

// NewChain validates that steps cover versions 0 through current-1 exactly once.
func NewChain(field string, current int, steps ...Step) (*Chain, error) {
	if field == "" || field == VersionField {
		return nil, fmt.Errorf("%w: entities field %q", ErrInvalidChain, field)
	}
	if current < BaselineVersion {
		return nil, fmt.Errorf("%w: current version %d", ErrInvalidChain, current)
	}
	ordered := make([]Step, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].From < ordered[j].From })

	if len(ordered) != current {
		return nil, fmt.Errorf("%w: %d steps for current version %d", ErrInvalidChain, len(ordered), current)
	}
	for i, step := range ordered {
		if step.From != i {
			return nil, fmt.Errorf("%w: missing or duplicate step from version %d", ErrInvalidChain, i)
		}
		if step.Apply == nil {
			return nil, fmt.Errorf("%w: step from version %d has no transform", ErrInvalidChain, i)
		}
	}
	return &Chain{field: field, current: current, steps: ordered}, nil
}

// MustChain is NewChain for package-level chains built from constants.
func MustChain(field string, current int, steps ...Step) *Chain {
	c, err := NewChain(field, current, steps...)
	if err != nil {
		panic(err)
	}
	return c
}

// Field returns the name of the entities field.
func (c *Chain) Field() string { return c.field }

// Current returns the version every migrated document ends at.
func (c *Chain) Current() int { return c.current }

// Migrate returns raw upgraded to the current version.
func (c *Chain) Migrate(raw []byte) Document {
	doc, _, _ := c.Load(raw)
	return doc
}

// Load is Migrate with diagnostics: from is the version found in the payload
// (-1 when raw is empty) and err explains why the payload was discarded. The
// returned document is valid in every case.
func (c *Chain) Load(raw []byte) (doc Document, from int, err error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return c.Empty(), -1, nil
	}

	decoded, err := decode(raw)
	if err != nil {
		return c.Empty(), -1, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	from = 0
	if v, present := decoded[VersionField]; present && v != nil {
		n, ok := versionOf(v)
		if !ok {
			return c.Empty(), -1, fmt.Errorf("%w: version %v is not a non-negative integer", ErrUnreadable, v)
		}
		from = n
	}
	if from > c.current {
		return c.Empty(), from, fmt.Errorf("%w: version %d is newer than %d", ErrUnreadable, from, c.current)
	}

	migrated, err := c.run(decoded, from)
	if err != nil {
		return c.Empty(), from, err
	}
	return migrated, from, nil
}

// Empty returns the baseline empty document, upgraded to the current version.
func (c *Chain) Empty() Document {
	doc := Document{c.field: []any{}, VersionField: BaselineVersion}
	if c.current == BaselineVersion {
		return doc
	}
	migrated, err := c.run(doc, BaselineVersion)
	if err != nil {
		return Document{c.field: []any{}, VersionField: c.current}
	}
	return migrated
}

func (c *Chain) run(doc Document, from int) (out Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: migration panicked: %v", ErrUnreadable, r)
		}
	}()

	for _, step := range c.steps {
		if step.From < from || step.From >= c.current {
			continue
		}
		doc = step.Apply(doc)
		if doc == nil {
			return nil, fmt.Errorf("%w: step from version %d returned nothing", ErrUnreadable, step.From)
		}
		doc[VersionField] = step.From + 1
	}

	doc[VersionField] = c.current
	switch doc[c.field].(type) {
	case nil:
		doc[c.field] = []any{}
	case []any:
	default:
		return nil, fmt.Errorf("%w: %q is not a sequence", ErrUnreadable, c.field)
	}
	return doc, nil
}

// CoerceSequence returns the 0 -> 1 step that turns a legacy entities field into
// a sequence: object maps become their values ordered by key, anything else
// that is not already a sequence becomes empty.
func CoerceSequence(field string) Step {
	return Step{From: 0, Apply: func(doc Document) Document {
		switch v := doc[field].(type) {
		case []any:
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			items := make([]any, 0, len(keys))
			for _, k := range keys {
				items = append(items, v[k])
			}
			doc[field] = items
		default:
			doc[field] = []any{}
		}
		return doc
	}}
}

func decode(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after snapshot")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("snapshot is %T, not an object", v)
	}
	return Document(obj), nil
}

func versionOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 || i > math.MaxInt32 {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) || n < 0 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
