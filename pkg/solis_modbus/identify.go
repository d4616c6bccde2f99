package solis_modbus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	SERIAL_NUMBER_REGISTER = 33004
	SERIAL_NUMBER_WORDS    = 8
	SERIAL_NUMBER_LENGTH   = 14
	SERIAL_NUMBER_UNKNOWN  = "unknown"
)

var (
	ErrShortRead       = errors.New("solis: short register read")
	ErrMalformedSerial = errors.New("solis: serial number is not printable ascii")
)

// RegisterReader reads contiguous 16 bit input registers.
type RegisterReader interface {
	ReadInputRegisters(address uint16, count uint16) ([]uint16, error)
}

type IdentificationState uint8

const (
	Unidentified IdentificationState = iota
	Identified
	IdentifiedUnknown
)

func (s IdentificationState) String() string {
	switch s {
	case Identified:
		return "identified"
	case IdentifiedUnknown:
		return "unknown"
	default:
		return "unidentified"
	}
}

type IdentifyOptions struct {
	SwapBytes bool
	ReadEPS   bool
	ReadDCB   bool
}

// Identification is the result of one identification run. It is written once per
// connection and only read afterwards.
type Identification struct {
	Serial string
	Mask   Mask
	State  IdentificationState
}

func (id Identification) Matches(requirement Mask, blacklist []string) bool {
	return Matches(id.Mask, requirement, id.Serial, blacklist)
}

// PrefixRule maps a serial number prefix to the base capabilities of an inverter model.
type PrefixRule struct {
	Prefix      string
	Mask        Mask
	Description string
}

// SolisPrefixRules is evaluated in order and the first matching prefix wins.
// Order is significant, a shorter prefix placed first shadows the longer ones after it.
var SolisPrefixRules = []PrefixRule{
	{Prefix: "303105", Mask: Of(HYBRID, X1), Description: "Hybrid Gen5 3kW"},
	{Prefix: "363105", Mask: Of(HYBRID, X1), Description: "Hybrid Gen5 3.6kW"},
	{Prefix: "463105", Mask: Of(HYBRID, X1), Description: "Hybrid Gen5 4.6kW"},
	{Prefix: "503105", Mask: Of(HYBRID, X1), Description: "Hybrid Gen5 5kW"},
	{Prefix: "603105", Mask: Of(HYBRID, X1), Description: "Hybrid Gen5 6kW"},
}

// Classify returns the first rule whose prefix matches the serial number.
func Classify(serial string, rules []PrefixRule) (PrefixRule, bool) {
	for _, rule := range rules {
		if strings.HasPrefix(serial, rule.Prefix) {
			return rule, true
		}
	}
	return PrefixRule{}, false
}

// Identify reads the serial number and derives the inverter capabilities from it.
// It never fails: an unreadable or unknown serial number yields an empty base mask.
func Identify(reader RegisterReader, opts IdentifyOptions, logger *zap.Logger) Identification {
	return identifyWithRules(reader, opts, SolisPrefixRules, logger)
}

func identifyWithRules(reader RegisterReader, opts IdentifyOptions, rules []PrefixRule, logger *zap.Logger) Identification {
	logger.Info("trying to determine inverter type")

	serial, err := ReadSerialNumber(reader, SERIAL_NUMBER_REGISTER, opts.SwapBytes)
	if err != nil {
		logger.Warn("reading serial number failed",
			zap.String("address", fmt.Sprintf("0x%x", SERIAL_NUMBER_REGISTER)), zap.Error(err))
		serial = ""
	}
	logger.Info("read serial number",
		zap.String("address", fmt.Sprintf("0x%x", SERIAL_NUMBER_REGISTER)),
		zap.String("serial", serial), zap.Bool("swapped", opts.SwapBytes))

	id := Identification{Serial: serial, State: Identified}
	if serial == "" {
		logger.Error("cannot find serial number")
		id.Serial = SERIAL_NUMBER_UNKNOWN
	}

	if rule, ok := Classify(id.Serial, rules); ok {
		id.Mask = rule.Mask
		logger.Info("inverter type determined", zap.String("model", rule.Description), zap.Stringer("mask", id.Mask))
	} else {
		id.State = IdentifiedUnknown
		logger.Error("unrecognized inverter type", zap.String("serial", id.Serial))
	}

	if opts.ReadEPS {
		id.Mask = id.Mask.With(EPS)
	}
	if opts.ReadDCB {
		id.Mask = id.Mask.With(DCB)
	}
	return id
}

// ReadSerialNumber reads and decodes the 14 character serial number at address.
func ReadSerialNumber(reader RegisterReader, address uint16, swapBytes bool) (string, error) {
	regs, err := reader.ReadInputRegisters(address, SERIAL_NUMBER_WORDS)
	if err != nil {
		return "", err
	}
	if len(regs) < SERIAL_NUMBER_WORDS {
		return "", fmt.Errorf("%w: got %d of %d registers", ErrShortRead, len(regs), SERIAL_NUMBER_WORDS)
	}
	raw := RegistersToBytes(regs)[:SERIAL_NUMBER_LENGTH]
	if swapBytes {
		raw = SwapBytePairs(raw)
	}
	return DecodeASCII(raw)
}

// RegistersToBytes unpacks registers as big endian words.
func RegistersToBytes(regs []uint16) []byte {
	b := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(b[2*i:], r)
	}
	return b
}

// SwapBytePairs swaps every adjacent pair of bytes. A trailing odd byte is kept in place.
func SwapBytePairs(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}

// DecodeASCII strips trailing padding (NUL and spaces) and rejects non printable text.
func DecodeASCII(raw []byte) (string, error) {
	if i := bytes.IndexByte(raw, 0x00); i >= 0 {
		raw = raw[:i]
	}
	s := strings.TrimRight(string(raw), " ")
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return "", ErrMalformedSerial
		}
	}
	return s, nil
}
