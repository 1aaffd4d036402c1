// Package eventloader reads daily event definitions from a CSV content
// sheet and serves them to the engine through the gameevent.Loader
// interface.
package eventloader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/chickenmaster/server/internal/domain/gameevent"
)

// Expected header: id,name,description,effects
// Effects are encoded as semicolon-separated TYPE:value pairs, e.g.
// "MONEY_CHANGE:-50000;FATIGUE_CHANGE:10". Stat experience carries the stat
// name as TYPE:stat:value.
const (
	columnCount     = 4
	effectSeparator = ";"
)

// CSVLoader implements gameevent.Loader over a CSV file. The file is parsed
// once and cached; malformed rows fail the whole load rather than being
// skipped silently.
type CSVLoader struct {
	path string

	mu     sync.Mutex
	cache  []gameevent.Event
	loaded bool
}

// NewCSVLoader creates a loader for the given content sheet.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// LoadAllEvents returns every event definition in the sheet.
func (l *CSVLoader) LoadAllEvents() ([]gameevent.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.cache, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open events csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = columnCount

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read events csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("events csv %s is empty", l.path)
	}

	header := rows[0]
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	events := make([]gameevent.Event, 0, len(rows)-1)
	for i, row := range rows[1:] {
		event, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("events csv row %d: %w", i+2, err)
		}
		events = append(events, event)
	}

	l.cache = events
	l.loaded = true
	return events, nil
}

func validateHeader(header []string) error {
	want := []string{"id", "name", "description", "effects"}
	for i, col := range want {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return fmt.Errorf("events csv: column %d must be %q, got %q", i+1, col, header[i])
		}
	}
	return nil
}

func parseRow(row []string) (gameevent.Event, error) {
	effects, err := parseEffects(row[3])
	if err != nil {
		return gameevent.Event{}, err
	}

	event := gameevent.Event{
		ID:          strings.TrimSpace(row[0]),
		Name:        strings.TrimSpace(row[1]),
		Description: strings.TrimSpace(row[2]),
		AutoEffects: effects,
	}
	if err := event.Validate(); err != nil {
		return gameevent.Event{}, err
	}
	return event, nil
}

func parseEffects(raw string) ([]gameevent.Effect, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, effectSeparator)
	effects := make([]gameevent.Effect, 0, len(parts))
	for _, part := range parts {
		effect, err := parseEffect(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		effects = append(effects, effect)
	}
	return effects, nil
}

func parseEffect(raw string) (gameevent.Effect, error) {
	fields := strings.Split(raw, ":")
	switch len(fields) {
	case 2:
		v, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return gameevent.Effect{}, fmt.Errorf("effect %q: bad value: %w", raw, err)
		}
		return gameevent.Effect{Type: gameevent.EffectType(strings.TrimSpace(fields[0])), Value: v}, nil
	case 3:
		// STAT_EXP:cooking:10
		v, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return gameevent.Effect{}, fmt.Errorf("effect %q: bad value: %w", raw, err)
		}
		return gameevent.Effect{
			Type:  gameevent.EffectType(strings.TrimSpace(fields[0])),
			Stat:  strings.TrimSpace(fields[1]),
			Value: v,
		}, nil
	default:
		return gameevent.Effect{}, fmt.Errorf("effect %q: want TYPE:value or TYPE:stat:value", raw)
	}
}
