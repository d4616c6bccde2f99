package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE     = "bridge"
	DEVICE_CLASS_CONNECTIVITY  = "connectivity"
	ENTITY_CATEGORY_DIAGNOSTIC = "diagnostic"
	SENSOR_TYPE_SENSOR         = "sensor"
	SENSOR_TYPE_BINARY         = "binary_sensor"
	INPUT_NUMBER_MODE_BOX      = "box"
	INPUT_NUMBER_MODE_SLIDER   = "slider"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("solis_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "Solis2MQTT",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Solis2MQTT %s", md5HashShort(baseTopic)),
	}
}

func InverterDevice(info *solis_modbus.InverterInfo) Device {
	return Device{
		Id:           fmt.Sprintf("solis_inverter_%s", md5HashShort(info.Serial)),
		Version:      info.Identification.Mask.String(),
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		Name:         fmt.Sprintf("%s %s %s", info.Manufacturer, info.Model, md5HashShort(info.Serial)),
	}
}

// IdDevice keeps only the identity of a device, enough to link an entity to it.
func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CATEGORY_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}}
}

// InverterSensors maps the admitted sensor points to components. Only the first
// one carries the full device description.
func InverterSensors(inverterDevice Device, points []solis_modbus.SensorPoint) []GenericSensor {
	sensors := make([]GenericSensor, 0, len(points))
	for i, p := range points {
		dev := inverterDevice
		if i > 0 {
			dev = IdDevice(inverterDevice)
		}
		sensor := GenericSensor{
			Device:            dev,
			Id:                p.Key,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              p.Name,
			UniqueId:          uniqueId(inverterDevice.Id, p.Key),
			UnitOfMeasurement: p.UnitOfMeasurement,
			StateClass:        p.StateClass,
			DeviceClass:       p.DeviceClass,
			EntityCategory:    p.EntityCategory,
			Icon:              p.Icon,
		}
		if p.DisabledByDefault {
			sensor.EnabledByDefault = optionalBool(false)
		}
		sensors = append(sensors, sensor)
	}
	return sensors
}

func InverterInputNumbers(inverterDevice Device, points []solis_modbus.NumberPoint) []GenericInputNumber {
	numbers := make([]GenericInputNumber, 0, len(points))
	for _, p := range points {
		numbers = append(numbers, GenericInputNumber{
			Device:            IdDevice(inverterDevice),
			Id:                p.Key,
			Name:              p.Name,
			UniqueId:          uniqueId(inverterDevice.Id, p.Key),
			Icon:              p.Icon,
			UnitOfMeasurement: p.UnitOfMeasurement,
			EntityCategory:    p.EntityCategory,
			Min:               p.Min,
			Max:               p.Max,
			Step:              p.Step,
			Mode:              INPUT_NUMBER_MODE_BOX,
		})
	}
	return numbers
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	return md5Hash(text)[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
