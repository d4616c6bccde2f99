package domain

import "github.com/berfenger/solis2mqtt/pkg/solis_modbus"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_MODBUS       = "modbus"
	ACTOR_ID_POLLER       = "poller"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type GetDevicesInfoRequest struct {
	ActorRequestMixIn
}

type GetDevicesInfoResponse struct {
	ActorResponseMixIn
	Inverter *solis_modbus.InverterInfo
}

// GetPointsRequest asks for the points admitted by the identified capabilities.
type GetPointsRequest struct {
	ActorRequestMixIn
}

type GetPointsResponse struct {
	ActorResponseMixIn
	Identification solis_modbus.Identification
	Sensors        []solis_modbus.SensorPoint
	Numbers        []solis_modbus.NumberPoint
}

type ReadSensorsRequest struct {
	ActorRequestMixIn
}

type ReadSensorsResponse struct {
	ActorResponseMixIn
	Values []solis_modbus.PointValue
}

type ReadNumbersRequest struct {
	ActorRequestMixIn
}

type ReadNumbersResponse struct {
	ActorResponseMixIn
	Values []solis_modbus.PointValue
}

type WriteNumberRequest struct {
	ActorRequestMixIn
	Key   string
	Value float64
}

type WriteNumberResponse struct {
	ActorResponseMixIn
	Key   string
	Value float64
}

// IdentifyRequest reopens the inverter connection and runs the identification again.
type IdentifyRequest struct {
	ActorRequestMixIn
}

type IdentifyResponse struct {
	ActorResponseMixIn
	Identification solis_modbus.Identification
	Changed        bool
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors      []GenericSensor
	InputNumbers []GenericInputNumber
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// RefreshDiscoveryRequest makes the discovery actor publish the point set again.
type RefreshDiscoveryRequest struct {
	ActorRequestMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
