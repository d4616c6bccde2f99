package domain

import (
	"testing"

	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/stretchr/testify/assert"
)

func TestInverterSensorsFromAdmittedPoints(t *testing.T) {

	assert := assert.New(t)

	info := &solis_modbus.InverterInfo{
		Manufacturer: solis_modbus.SOLIS_MANUFACTURER,
		Model:        "Hybrid Gen5 3kW",
		Serial:       "3031050001ABCD",
		Identification: solis_modbus.Identification{
			Serial: "3031050001ABCD",
			Mask:   solis_modbus.Of(solis_modbus.HYBRID, solis_modbus.X1),
			State:  solis_modbus.Identified,
		},
	}
	dev := InverterDevice(info)
	assert.Equal("solis_inverter_"+md5HashShort(info.Serial), dev.Id)
	assert.Equal("X1|HYBRID", dev.Version)

	points := solis_modbus.FilterPoints(solis_modbus.SolisSensorPoints(), info.Identification, nil)
	sensors := InverterSensors(dev, points)

	assert.Len(sensors, len(points))
	assert.Equal(dev, sensors[0].Device)
	assert.Equal(IdDevice(dev), sensors[1].Device)
	for i := range sensors {
		assert.Equal(points[i].Key, sensors[i].Id)
		assert.Equal(uniqueId(dev.Id, points[i].Key), sensors[i].UniqueId)
	}
	// serial number sensor is disabled by default
	assert.NotNil(sensors[0].EnabledByDefault)
	assert.False(*sensors[0].EnabledByDefault)
}

func TestInverterInputNumbers(t *testing.T) {

	assert := assert.New(t)

	dev := Device{Id: "inv", Name: "Inverter"}
	numbers := InverterInputNumbers(dev, []solis_modbus.NumberPoint{
		{Key: "timed_charge_start_h", Name: "Timed Charge Start Hours", Max: 23, Step: 1},
	})

	assert.Len(numbers, 1)
	assert.Equal(float64(23), numbers[0].Max)
	assert.Equal(INPUT_NUMBER_MODE_BOX, numbers[0].Mode)
	assert.Equal("uid_inv_timed_charge_start_h", numbers[0].UniqueId)
}

func TestNumberCommand(t *testing.T) {

	assert := assert.New(t)

	req, err := NumberCommand("timed_charge_start_h", " 22 ")
	assert.NoError(err)
	assert.Equal("timed_charge_start_h", req.Key)
	assert.Equal(float64(22), req.Value)

	_, err = NumberCommand("timed_charge_start_h", "on")
	assert.Error(err)

	for _, payload := range []string{"NaN", "nan", "Inf", "-Inf"} {
		_, err = NumberCommand("timed_charge_start_h", payload)
		assert.Error(err, payload)
	}
}
