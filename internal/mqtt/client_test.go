package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/solis2mqtt/internal/config"
	"github.com/berfenger/solis2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *MQTTClient {
	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "solis",
			HADiscoveryTopic: "homeassistant",
		},
	}
	return CreateMQTTClient(cfg, OptsFromConfig(cfg), nil, nil)
}

func TestInputNumberCommandParse(t *testing.T) {

	assert := assert.New(t)

	r := inputNumberCommandExtractor("loremTopic")
	cmd, err := parseInputNumberCommand(r, "loremTopic/number/timed_charge_start_h/set", []byte("22"))

	assert.NoError(err)
	assert.Equal("timed_charge_start_h", cmd.DeviceId, "number_id extract")
	assert.Equal(MQTT_COMMAND_NUMBER, cmd.Command)
	assert.Equal("22", cmd.Payload)
}

func TestInputNumberCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	r := inputNumberCommandExtractor("loremTopic")

	_, err := parseInputNumberCommand(r, "loremTopic/number/number_name/state", []byte("1"))
	assert.Error(err, "state topic is not a command")
	_, err = parseInputNumberCommand(r, "otherTopic/loremTopic/number/number_name/set", []byte("1"))
	assert.Error(err, "foreign base topic")
	_, err = parseInputNumberCommand(r, "loremTopic/number/number_name/set", []byte("on"))
	assert.Error(err, "payload is not a number")
	_, err = parseInputNumberCommand(r, "loremTopic/number/number_name/set", []byte("NaN"))
	assert.Error(err, "NaN payload")
	_, err = parseInputNumberCommand(r, "loremTopic/number/number_name/set", []byte("+Inf"))
	assert.Error(err, "infinite payload")
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	c := testClient()
	assert.Equal("solis/bridge/state", c.BridgeStateTopic())
	assert.Equal("solis/sensor/battery_soc/state", c.SensorStateTopic("battery_soc"))
	assert.Equal("solis/number/timed_charge_start_h/state", c.InputNumberStateTopic("timed_charge_start_h"))
	assert.Equal("solis/number/timed_charge_start_h/set", c.InputNumberCommandTopic("timed_charge_start_h"))
	assert.Equal("solis/number/+/set", c.commandTopic())
}

func TestHADiscoveryMessages(t *testing.T) {

	require := require.New(t)

	c := testClient()
	dev := domain.Device{Id: "solis_inverter_1234", Name: "Inverter"}

	sensor := domain.GenericSensor{Device: dev, Id: "battery_soc", SensorType: domain.SENSOR_TYPE_SENSOR, Name: "Battery SOC"}
	require.Equal("homeassistant/sensor/solis_inverter_1234/battery_soc/config", HADiscoverySensorTopic(c, sensor))
	msg := GenericSensorToHADiscoveryMessage(c, sensor)
	require.Equal("solis/sensor/battery_soc/state", msg.StateTopic)
	require.Equal("solis/bridge/state", msg.AvTopic)

	bridge := domain.BridgeSensors(domain.Device{Id: "bridge"})[0]
	msg = GenericSensorToHADiscoveryMessage(c, bridge)
	require.Equal("solis/bridge/state", msg.StateTopic)
	require.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	require.Equal("homeassistant/binary_sensor/bridge/bridge/config", HADiscoverySensorTopic(c, bridge))

	number := domain.GenericInputNumber{Device: dev, Id: "timed_charge_start_h", Min: 0, Max: 23, Step: 1}
	require.Equal("homeassistant/number/solis_inverter_1234/timed_charge_start_h/config", HADiscoveryInputNumberTopic(c, number))
	payload, err := json.Marshal(GenericInputNumberToHADiscoveryMessage(c, number))
	require.NoError(err)
	require.Contains(string(payload), `"min":0`)
	require.Contains(string(payload), `"command_topic":"solis/number/timed_charge_start_h/set"`)
}
