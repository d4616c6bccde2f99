package solis_modbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

const SOLIS_MANUFACTURER = "Ginlong Solis"

type SolisModbusReader struct {
	ModbusClient

	logger *zap.Logger
	opts   IdentifyOptions
	id     Identification
}

func CreateSolisModbusReader(ip string, port uint, unitId uint8, timeout time.Duration,
	opts IdentifyOptions, logger *zap.Logger, instrumentation *ModbusInstrument) (InverterModbusReader, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", ip, port),
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	// instrumentation
	var inst []ModbusInstrument
	logInst := traceLoggerInstrumentation(logger.With(zap.String("target", "inverter"), zap.Uint8("unit", unitId)))
	if logInst != nil {
		inst = append(inst, *logInst)
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}

	// set inverter address
	if unitId > 0 {
		err = client.SetUnitId(unitId)
		if err != nil {
			return nil, err
		}
	}

	return &SolisModbusReader{
		ModbusClient: ModbusClient{
			client:     client,
			instrument: inst,
		},
		logger: logger,
		opts:   opts,
	}, nil
}

// Open connects and identifies the inverter. A failed identification does not
// fail Open, the reader then runs with an empty capability mask.
func (inv *SolisModbusReader) Open() error {
	if err := inv.client.Open(); err != nil {
		return err
	}
	inv.id = Identify(inv.ModbusClient, inv.opts, inv.logger)
	return nil
}

func (inv *SolisModbusReader) Close() error {
	return inv.client.Close()
}

func (inv *SolisModbusReader) Identify() Identification {
	return inv.id
}

func (inv *SolisModbusReader) GetInfo() (*InverterInfo, error) {
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

func (inv *SolisModbusReader) ReadSensor(point SensorPoint) (*PointValue, error) {
	regs, err := inv.readRegisters(point.Register, point.Words(), point.RegisterType)
	if err != nil {
		return nil, err
	}
	value, err := DecodeSensor(point, regs)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (inv *SolisModbusReader) ReadNumber(point NumberPoint) (*PointValue, error) {
	reg, err := inv.readRegister(point.Register, modbus.HOLDING_REGISTER)
	if err != nil {
		return nil, err
	}
	return &PointValue{Key: point.Key, Value: float64(reg)}, nil
}

func (inv *SolisModbusReader) WriteNumber(point NumberPoint, value float64) error {
	word, err := EncodeNumber(point, value)
	if err != nil {
		return err
	}
	return inv.writeRegister(point.Register, word)
}
