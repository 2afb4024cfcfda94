package rosterdomain

// DrillDefinition describes one scored drill in an event's scoring schema.
type DrillDefinition struct {
	Key           string   `json:"key"`
	Label         string   `json:"label"`
	Unit          string   `json:"unit,omitempty"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	Weight        float64  `json:"weight,omitempty"`
	LowerIsBetter bool     `json:"lower_is_better,omitempty"`
}

// EventSchema is the set of valid drill fields for one event. It is owned by an
// external collaborator; the import engine only reads it to tell flat drill
// columns apart from unrelated ignored columns.
type EventSchema struct {
	EventID string            `json:"event_id"`
	Drills  []DrillDefinition `json:"drills"`
}

// DrillKeys returns the set of canonical drill keys.
func (s EventSchema) DrillKeys() map[string]bool {
	keys := make(map[string]bool, len(s.Drills))
	for _, d := range s.Drills {
		keys[d.Key] = true
	}
	return keys
}

// LabelIndex maps separator-normalized drill labels and keys to drill keys, so
// a spreadsheet column titled by label ("Lane Agility (sec)") resolves to the
// schema key ("lane_agility").
func (s EventSchema) LabelIndex() map[string]string {
	idx := make(map[string]string, len(s.Drills)*2)
	for _, d := range s.Drills {
		idx[NormalizeHeader(d.Key)] = d.Key
		if d.Label != "" {
			idx[NormalizeHeader(d.Label)] = d.Key
		}
	}
	return idx
}

// Drill returns the definition for a key, if declared.
func (s EventSchema) Drill(key string) (DrillDefinition, bool) {
	for _, d := range s.Drills {
		if d.Key == key {
			return d, true
		}
	}
	return DrillDefinition{}, false
}
