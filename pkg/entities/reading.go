package entities

// ReadingKind tags the typed interpretation of a raw sensor state.
type ReadingKind int

const (
	ReadingUnmapped ReadingKind = iota
	ReadingNumeric
	ReadingBoolean
)

// Reading is the typed value extracted from a raw state string, decided
// once per event instead of carrying an untyped value around.
type Reading struct {
	Kind   ReadingKind
	Number float64
	Bool   bool
}

func NumericReading(value float64) Reading {
	return Reading{Kind: ReadingNumeric, Number: value}
}

func BooleanReading(value bool) Reading {
	return Reading{Kind: ReadingBoolean, Bool: value}
}

func UnmappedReading() Reading {
	return Reading{Kind: ReadingUnmapped}
}

// Value returns the concrete value to write to the registry, or nil for an
// unmapped reading.
func (r Reading) Value() interface{} {
	switch r.Kind {
	case ReadingNumeric:
		return r.Number
	case ReadingBoolean:
		return r.Bool
	}
	return nil
}
