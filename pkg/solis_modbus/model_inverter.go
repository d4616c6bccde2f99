package solis_modbus

type InverterInfo struct {
	Manufacturer   string
	Model          string
	Serial         string
	Identification Identification
}

type InverterModbusReader interface {
	Open() error
	Close() error
	Identify() Identification
	GetInfo() (*InverterInfo, error)
	ReadSensor(point SensorPoint) (*PointValue, error)
	ReadNumber(point NumberPoint) (*PointValue, error)
	WriteNumber(point NumberPoint, value float64) error
}

// Model returns the description of the prefix rule matching the serial number.
func Model(id Identification) string {
	if rule, ok := Classify(id.Serial, SolisPrefixRules); ok {
		return rule.Description
	}
	return "Unknown"
}
