package learning

// Config controls Learning Mode generation.
type Config struct {
	// MaxConcepts bounds how many concepts are extracted from one note.
	MaxConcepts int

	// ProblemsPerConcept bounds practice problems (sub-items) per concept.
	ProblemsPerConcept int

	// PrefetchAhead is how many upcoming intros are pre-generated.
	PrefetchAhead int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns Learning Mode defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcepts:        8,
		ProblemsPerConcept: 3,
		PrefetchAhead:      2,
		MaxTokens:          2048,
		Temperature:        0.7,
	}
}
