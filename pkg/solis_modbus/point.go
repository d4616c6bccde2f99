package solis_modbus

import "github.com/simonvetter/modbus"

type ValueType uint8

const (
	REGISTER_U16 ValueType = iota
	REGISTER_S16
	REGISTER_U32
	REGISTER_S32
	REGISTER_STR
	REGISTER_WORDS
)

const (
	REG_HOLDING = modbus.HOLDING_REGISTER
	REG_INPUT   = modbus.INPUT_REGISTER
)

const (
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_BATTERY         = "battery"
	DEVICE_CLASS_CURRENT         = "current"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_FREQUENCY       = "frequency"
	DEVICE_CLASS_POWER           = "power"
	DEVICE_CLASS_APPARENT_POWER  = "apparent_power"
	DEVICE_CLASS_REACTIVE_POWER  = "reactive_power"
	DEVICE_CLASS_TEMPERATURE     = "temperature"
	DEVICE_CLASS_VOLTAGE         = "voltage"
	ENTITY_CATEGORY_DIAGNOSTIC   = "diagnostic"
	ENTITY_CATEGORY_CONFIG       = "config"
)

// Point attaches an applicability requirement to any kind of point description.
type Point[T any] struct {
	Requirement Mask
	Payload     T
}

// SensorPoint describes a read-only value exposed by the inverter.
type SensorPoint struct {
	Key               string
	Name              string
	Register          uint16
	RegisterType      modbus.RegType
	ValueType         ValueType
	WordCount         uint16
	Scale             float64
	Rounding          uint
	UnitOfMeasurement string
	DeviceClass       string
	StateClass        string
	EntityCategory    string
	Icon              string
	DisabledByDefault bool
	Blacklist         []string
}

// NumberPoint describes a writable holding register.
type NumberPoint struct {
	Key               string
	Name              string
	Register          uint16
	Min               float64
	Max               float64
	Step              float64
	UnitOfMeasurement string
	EntityCategory    string
	Icon              string
	Blacklist         []string
}

type blacklisted interface {
	blacklist() []string
}

func (p SensorPoint) blacklist() []string { return p.Blacklist }
func (p NumberPoint) blacklist() []string { return p.Blacklist }

// Words returns the number of registers needed to read the point.
func (p SensorPoint) Words() uint16 {
	switch p.ValueType {
	case REGISTER_U32, REGISTER_S32:
		return 2
	case REGISTER_STR, REGISTER_WORDS:
		if p.WordCount > 0 {
			return p.WordCount
		}
	}
	return 1
}

// Applies reports whether the point is eligible for an identified inverter.
func (p Point[T]) Applies(id Identification, blacklist []string) bool {
	if !id.Matches(p.Requirement, blacklist) {
		return false
	}
	if b, ok := any(p.Payload).(blacklisted); ok {
		return !Blacklisted(id.Serial, b.blacklist())
	}
	return true
}

// FilterPoints keeps the points that apply to the inverter, preserving table order.
func FilterPoints[T any](points []Point[T], id Identification, blacklist []string) []T {
	var out []T
	for _, p := range points {
		if p.Applies(id, blacklist) {
			out = append(out, p.Payload)
		}
	}
	return out
}
