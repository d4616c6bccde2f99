package solis_modbus

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfRange    = errors.New("solis: value out of range")
	ErrInvalidNumber = errors.New("solis: invalid number")
)

// PointValue is a decoded sensor reading. Text is set for string and clock points,
// Value for every numeric point.
type PointValue struct {
	Key      string
	Value    float64
	Text     string
	IsText   bool
	Decimals uint
}

func DecodeSensor(p SensorPoint, regs []uint16) (PointValue, error) {
	if len(regs) < int(p.Words()) {
		return PointValue{}, fmt.Errorf("%w: %s needs %d registers, got %d", ErrShortRead, p.Key, p.Words(), len(regs))
	}
	switch p.ValueType {
	case REGISTER_STR:
		s, err := DecodeASCII(RegistersToBytes(regs[:p.Words()]))
		if err != nil {
			return PointValue{}, fmt.Errorf("%s: %w", p.Key, err)
		}
		return PointValue{Key: p.Key, Text: s, IsText: true}, nil
	case REGISTER_WORDS:
		return PointValue{Key: p.Key, Text: formatClock(regs[:p.Words()]), IsText: true}, nil
	}

	var raw float64
	switch p.ValueType {
	case REGISTER_S16:
		raw = float64(int16(regs[0]))
	case REGISTER_U32:
		raw = float64(uint32(regs[0])<<16 | uint32(regs[1]))
	case REGISTER_S32:
		raw = float64(int32(uint32(regs[0])<<16 | uint32(regs[1])))
	default:
		raw = float64(regs[0])
	}
	return PointValue{
		Key:      p.Key,
		Value:    round(raw*scaleOf(p), p.Rounding),
		Decimals: p.Rounding,
	}, nil
}

// EncodeNumber validates a number against its bounds and step and returns the register word.
// Only values the register can hold exactly are accepted.
func EncodeNumber(p NumberPoint, value float64) (uint16, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %s=%v", ErrInvalidNumber, p.Key, value)
	}
	if value < p.Min || value > p.Max {
		return 0, fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, p.Key, value, p.Min, p.Max)
	}
	step := p.Step
	if step <= 0 {
		step = 1
	}
	if n := (value - p.Min) / step; math.Abs(n-math.Round(n)) > 1e-9 || value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: %s=%v is not a multiple of %v", ErrInvalidNumber, p.Key, value, step)
	}
	return uint16(value), nil
}

func scaleOf(p SensorPoint) float64 {
	if p.Scale == 0 {
		return 1
	}
	return p.Scale
}

func round(v float64, decimals uint) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// formatClock renders the Solis RTC words (yy, mm, dd, hh, mi, ss).
func formatClock(words []uint16) string {
	w := make([]uint16, 6)
	copy(w, words)
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", 2000+int(w[0]), w[1], w[2], w[3], w[4], w[5])
}
