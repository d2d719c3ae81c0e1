package migration

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seeds.yaml
var defaultSeeds []byte

// Seeds is the data table the upgrade chain installs: ratchet floors, default fields,
// records created when absent and the starter gym catalog.
type Seeds struct {
	DailyGoalMinutes float64               `yaml:"dailyGoalMinutes"`
	SampleDate       string                `yaml:"sampleDate"`
	Fitness          FitnessSeed           `yaml:"fitness"`
	Records          map[string]RecordSeed `yaml:"records"`
	Daily            []DailySeed           `yaml:"daily"`
	Exercises        Catalog               `yaml:"exercises"`
}

// FitnessSeed backfills the monthly fitness test series.
type FitnessSeed struct {
	Highest float64   `yaml:"highest"`
	Scores  []float64 `yaml:"scores"`
}

// RecordSeed describes how one activity record is upgraded.
type RecordSeed struct {
	// Floor is the minimum totalHours. It applies when totalHours is a number, or always
	// when FloorWhenMissing is set.
	Floor            float64            `yaml:"floor"`
	FloorWhenMissing bool               `yaml:"floorWhenMissing"`
	Defaults         map[string]any     `yaml:"defaults"`
	Minimums         map[string]float64 `yaml:"minimums"`
	// Create is installed verbatim when the record is absent.
	Create map[string]any `yaml:"create"`
}

// DailySeed is one starter checklist entry.
type DailySeed struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// ExerciseSeed is one catalog exercise with an optional sample set.
type ExerciseSeed struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
	Reps   int     `yaml:"reps"`
}

// Catalog groups starter exercises by category.
type Catalog struct {
	Push []ExerciseSeed `yaml:"push"`
	Pull []ExerciseSeed `yaml:"pull"`
	Legs []ExerciseSeed `yaml:"legs"`
}

type categorized struct {
	ExerciseSeed
	category string
}

func (c Catalog) all() []categorized {
	out := make([]categorized, 0, len(c.Push)+len(c.Pull)+len(c.Legs))
	for _, group := range []struct {
		name  string
		items []ExerciseSeed
	}{{"push", c.Push}, {"pull", c.Pull}, {"legs", c.Legs}} {
		for _, e := range group.items {
			out = append(out, categorized{ExerciseSeed: e, category: group.name})
		}
	}
	return out
}

// ParseSeeds decodes a seed table, rejecting unknown fields.
func ParseSeeds(data []byte) (*Seeds, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Seeds
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode seeds: %w", err)
	}
	if s.DailyGoalMinutes <= 0 {
		return nil, fmt.Errorf("decode seeds: dailyGoalMinutes must be positive")
	}
	return &s, nil
}

// DefaultSeeds returns the built-in seed table.
func DefaultSeeds() *Seeds {
	s, err := ParseSeeds(defaultSeeds)
	if err != nil {
		panic(err)
	}
	return s
}
