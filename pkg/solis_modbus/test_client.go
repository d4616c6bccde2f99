package solis_modbus

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// RegisterMap is an in-memory register space, used by the mocked reader and tests.
type RegisterMap struct {
	mu      sync.Mutex
	input   map[uint16]uint16
	holding map[uint16]uint16
	// ReadError, when set, is returned by every input register read.
	ReadError error
}

func NewRegisterMap() *RegisterMap {
	return &RegisterMap{
		input:   map[uint16]uint16{},
		holding: map[uint16]uint16{},
	}
}

func (m *RegisterMap) SetInput(addr uint16, values ...uint16) *RegisterMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range values {
		m.input[addr+uint16(i)] = v
	}
	return m
}

func (m *RegisterMap) SetHolding(addr uint16, values ...uint16) *RegisterMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range values {
		m.holding[addr+uint16(i)] = v
	}
	return m
}

// SetString packs an ascii string into registers, two chars per register, NUL padded.
func (m *RegisterMap) SetString(addr uint16, words int, s string) *RegisterMap {
	b := make([]byte, 2*words)
	copy(b, s)
	regs := make([]uint16, words)
	for i := range regs {
		regs[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return m.SetInput(addr, regs...)
}

func (m *RegisterMap) ReadInputRegisters(addr uint16, count uint16) ([]uint16, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	return m.read(m.input, addr, count), nil
}

func (m *RegisterMap) Holding(addr uint16) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holding[addr]
}

func (m *RegisterMap) read(space map[uint16]uint16, addr uint16, count uint16) []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	regs := make([]uint16, count)
	for i := range regs {
		regs[i] = space[addr+uint16(i)]
	}
	return regs
}

func CreateTestInverterModbusReader(registers *RegisterMap, opts IdentifyOptions) (InverterModbusReader, error) {
	if registers == nil {
		registers = DefaultTestRegisters()
	}
	return &TestInverterModbusReader{registers: registers, opts: opts}, nil
}

// DefaultTestRegisters describes a 3kW single phase hybrid inverter.
func DefaultTestRegisters() *RegisterMap {
	return NewRegisterMap().
		SetString(SERIAL_NUMBER_REGISTER, SERIAL_NUMBER_WORDS, "3031050001ABCD").
		SetInput(33023, 24, 5, 17, 12, 30, 45).
		SetInput(33029, 0, 1234).
		SetInput(33035, 125).
		SetInput(33049, 3521, 42).
		SetInput(33057, 0, 1480).
		SetInput(33073, 2301, 0, 0, 64).
		SetInput(33093, 412, 5002).
		SetInput(33133, 524, 0xFFEC).
		SetInput(33139, 87, 99).
		SetInput(33147, 640).
		SetHolding(43143, 2, 30, 5, 0)
}

type TestInverterModbusReader struct {
	registers *RegisterMap
	opts      IdentifyOptions
	id        Identification
}

func (inv *TestInverterModbusReader) Open() error {
	inv.id = Identify(inv.registers, inv.opts, zap.NewNop())
	return nil
}

func (inv *TestInverterModbusReader) Close() error {
	return nil
}

func (inv *TestInverterModbusReader) Identify() Identification {
	return inv.id
}

func (inv *TestInverterModbusReader) GetInfo() (*InverterInfo, error) {
	if inv.id.State == Unidentified {
		return nil, errors.New("solis: inverter not identified")
	}
	return &InverterInfo{
		Manufacturer:   SOLIS_MANUFACTURER,
		Model:          Model(inv.id),
		Serial:         inv.id.Serial,
		Identification: inv.id,
	}, nil
}

func (inv *TestInverterModbusReader) ReadSensor(point SensorPoint) (*PointValue, error) {
	var regs []uint16
	if point.RegisterType == REG_HOLDING {
		regs = inv.registers.read(inv.registers.holding, point.Register, point.Words())
	} else {
		var err error
		regs, err = inv.registers.ReadInputRegisters(point.Register, point.Words())
		if err != nil {
			return nil, err
		}
	}
	value, err := DecodeSensor(point, regs)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (inv *TestInverterModbusReader) ReadNumber(point NumberPoint) (*PointValue, error) {
	return &PointValue{Key: point.Key, Value: float64(inv.registers.Holding(point.Register))}, nil
}

func (inv *TestInverterModbusReader) WriteNumber(point NumberPoint, value float64) error {
	word, err := EncodeNumber(point, value)
	if err != nil {
		return err
	}
	inv.registers.SetHolding(point.Register, word)
	return nil
}
