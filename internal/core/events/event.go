package events

import (
	. "github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"
)

func SensorValueToUpdateEvent(v solis_modbus.PointValue) any {
	if v.IsText {
		return TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: v.Key,
			},
			Value: v.Text,
		}
	}
	return FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: v.Key,
		},
		Value:    v.Value,
		Decimals: v.Decimals,
	}
}

func SensorValuesToUpdateEvents(values []solis_modbus.PointValue) []any {
	events := make([]any, 0, len(values))
	for _, v := range values {
		events = append(events, SensorValueToUpdateEvent(v))
	}
	return events
}

func NumberValueToUpdateEvent(key string, value float64) any {
	return InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: key,
		},
		Value: value,
	}
}

func NumberValuesToUpdateEvents(values []solis_modbus.PointValue) []any {
	events := make([]any, 0, len(values))
	for _, v := range values {
		events = append(events, NumberValueToUpdateEvent(v.Key, v.Value))
	}
	return events
}

func BridgeStateUpdateEvents(online bool) any {
	return BridgeStateUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BRIDGE_STATE,
		},
		Value: online,
	}
}
