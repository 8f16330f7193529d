package entities

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DeviceClassIlluminance = "illuminance"
	DeviceClassTemperature = "temperature"
	DeviceClassMotion      = "motion"

	stateOn = "on"
)

// ValueKind says how the raw state of a device class is interpreted.
type ValueKind int

const (
	ValueNumeric ValueKind = iota
	ValueBoolean
)

// ClassRule ties a device class to its value interpretation and to the
// registry model used when the twin has to be created.
type ClassRule struct {
	Kind    ValueKind
	ModelID string
}

// Classification is the device class rule table. Immutable after
// construction; the rules map is copied in.
type Classification struct {
	rules map[string]ClassRule
}

func NewClassification(rules map[string]ClassRule) Classification {
	copied := make(map[string]ClassRule, len(rules))
	for class, rule := range rules {
		copied[class] = rule
	}
	return Classification{rules: copied}
}

// DefaultClassification returns the fixed table shipped with the service.
func DefaultClassification() Classification {
	return NewClassification(map[string]ClassRule{
		DeviceClassIlluminance: {Kind: ValueNumeric, ModelID: "dtmi:twinsync:sensor:Illuminance;1"},
		DeviceClassTemperature: {Kind: ValueNumeric, ModelID: "dtmi:twinsync:sensor:Temperature;1"},
		DeviceClassMotion:      {Kind: ValueBoolean, ModelID: "dtmi:twinsync:sensor:Motion;1"},
	})
}

// Classify maps a raw state string into a typed reading. Unknown classes
// and unparsable numeric states yield an unmapped reading.
func (c Classification) Classify(deviceClass, state string) Reading {
	rule, ok := c.rules[deviceClass]
	if !ok {
		return UnmappedReading()
	}
	switch rule.Kind {
	case ValueNumeric:
		number, err := strconv.ParseFloat(state, 64)
		if err != nil {
			return UnmappedReading()
		}
		return NumericReading(number)
	case ValueBoolean:
		return BooleanReading(strings.EqualFold(state, stateOn))
	}
	return UnmappedReading()
}

// ModelID returns the model reference for a device class. A recognized
// class with no model entry is an inconsistent table; creating a twin must
// not guess a default, so this is an explicit error.
func (c Classification) ModelID(deviceClass string) (string, error) {
	rule, ok := c.rules[deviceClass]
	if !ok || rule.ModelID == "" {
		return "", fmt.Errorf("no model identifier for device class %q", deviceClass)
	}
	return rule.ModelID, nil
}
