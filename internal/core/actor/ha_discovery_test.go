package actor

import (
	"testing"

	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/stretchr/testify/assert"
)

func TestBuildDiscoveryRequest(t *testing.T) {

	assert := assert.New(t)

	id := solis_modbus.Identification{Serial: "3031050001ABCD", Mask: solis_modbus.Of(solis_modbus.HYBRID, solis_modbus.X1), State: solis_modbus.Identified}
	info := &domain.GetDevicesInfoResponse{
		Inverter: &solis_modbus.InverterInfo{
			Manufacturer:   solis_modbus.SOLIS_MANUFACTURER,
			Model:          "Hybrid Gen5 3kW",
			Serial:         id.Serial,
			Identification: id,
		},
	}
	points := domain.GetPointsResponse{
		Identification: id,
		Sensors:        solis_modbus.FilterPoints(solis_modbus.SolisSensorPoints(), id, nil),
		Numbers:        solis_modbus.FilterPoints(solis_modbus.SolisNumberPoints(), id, nil),
	}

	req := BuildDiscoveryRequest("solis", info, points)

	assert.Len(req.Sensors, len(points.Sensors)+1)
	assert.Len(req.InputNumbers, 8)
	assert.Equal(domain.SENSOR_ID_BRIDGE_STATE, req.Sensors[0].Id)

	bridge := domain.BridgeDevice("solis")
	inverter := req.Sensors[1].Device
	assert.Equal(bridge.Id, inverter.ViaDevice)
	assert.Equal(id.Mask.String(), inverter.Version)
}

func TestBuildDiscoveryRequestDegraded(t *testing.T) {

	assert := assert.New(t)

	id := solis_modbus.Identification{Serial: solis_modbus.SERIAL_NUMBER_UNKNOWN, State: solis_modbus.IdentifiedUnknown}
	info := &domain.GetDevicesInfoResponse{
		Inverter: &solis_modbus.InverterInfo{
			Manufacturer:   solis_modbus.SOLIS_MANUFACTURER,
			Serial:         id.Serial,
			Identification: id,
		},
	}
	req := BuildDiscoveryRequest("solis", info, domain.GetPointsResponse{Identification: id})

	assert.Len(req.Sensors, 1)
	assert.Equal(domain.SENSOR_ID_BRIDGE_STATE, req.Sensors[0].Id)
	assert.Empty(req.InputNumbers)
}
