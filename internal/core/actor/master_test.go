package actor

import (
	"testing"
	"time"

	adactor "github.com/berfenger/solis2mqtt/internal/adapter/actor"
	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/internal/mqtt"
	"github.com/berfenger/solis2mqtt/internal/util"
	"github.com/berfenger/solis2mqtt/internal/util/actorutil"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// waitForMessage drains sink until a message matches or the timeout expires.
func waitForMessage(t *testing.T, sink <-chan adactor.PublishedMessage, timeout time.Duration, match func(adactor.PublishedMessage) bool) adactor.PublishedMessage {
	deadline := time.After(timeout)
	for {
		select {
		case m := <-sink:
			if match(m) {
				return m
			}
		case <-deadline:
			t.Fatal("expected message not published")
			return adactor.PublishedMessage{}
		}
	}
}

func TestMasterActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.MQTT.HADiscoveryEnable = true
	cfg.MonitorConfig.PollIntervalMillis = 1000

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registers := solis_modbus.DefaultTestRegisters()
	sink := make(chan adactor.PublishedMessage, 1024)

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.ModbusActor {
			inv, err := solis_modbus.CreateTestInverterModbusReader(registers, solis_modbus.IdentifyOptions{ReadEPS: true})
			if err != nil {
				panic(err)
			}
			return adactor.NewModbusActor(inv, nil, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, sink, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	require.NoError(t, err)
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(ok)
	assert.True(healthResp.Healthy, "healthy is true")
	assert.Equal(solis_modbus.Identified.String(), healthResp.State)

	// discovery for the admitted points
	waitForMessage(t, sink, 5*time.Second, func(m adactor.PublishedMessage) bool {
		return m.Topic == "homeassistant/number/"+inverterDeviceId("3031050001ABCD")+"/timed_charge_start_h/config"
	})

	// polled values
	m := waitForMessage(t, sink, 5*time.Second, func(m adactor.PublishedMessage) bool {
		return m.Topic == "solis/sensor/pv_voltage_1/state"
	})
	assert.Equal("352.1", m.Payload)

	// number command from MQTT
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: "timed_charge_start_h",
		Command:  mqtt.MQTT_COMMAND_NUMBER,
		Payload:  "5",
	}})
	waitForMessage(t, sink, 5*time.Second, func(m adactor.PublishedMessage) bool {
		return m.Topic == "solis/number/timed_charge_start_h/state" && m.Payload == "5"
	})
	assert.Equal(uint16(5), registers.Holding(43143))

	// points requested through the master
	res, err = context.RequestFuture(pid, domain.GetPointsRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	points := res.(domain.GetPointsResponse)
	assert.Equal("3031050001ABCD", points.Identification.Serial)
	assert.Len(points.Numbers, 8)

	context.Stop(pid)
	as.Shutdown()
}

func TestMasterActorRejectsInvalidNumber(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registers := solis_modbus.DefaultTestRegisters()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.ModbusActor {
			inv, err := solis_modbus.CreateTestInverterModbusReader(registers, solis_modbus.IdentifyOptions{})
			if err != nil {
				panic(err)
			}
			return adactor.NewModbusActor(inv, nil, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, nil, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)

	before := registers.Holding(43143)
	for _, payload := range []string{"abc", "99"} {
		context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
			DeviceId: "timed_charge_start_h",
			Command:  mqtt.MQTT_COMMAND_NUMBER,
			Payload:  payload,
		}})
	}

	// the health check is processed after both commands
	_, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	assert.NoError(err)
	assert.Equal(before, registers.Holding(43143))

	context.Stop(pid)
	as.Shutdown()
}

func inverterDeviceId(serial string) string {
	return domain.InverterDevice(&solis_modbus.InverterInfo{Serial: serial}).Id
}

func TestMasterActorReidentifyRefreshesDiscovery(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.MQTT.HADiscoveryEnable = true
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	registers := solis_modbus.DefaultTestRegisters()
	sink := make(chan adactor.PublishedMessage, 1024)

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.ModbusActor {
			inv, err := solis_modbus.CreateTestInverterModbusReader(registers, solis_modbus.IdentifyOptions{})
			if err != nil {
				panic(err)
			}
			return adactor.NewModbusActor(inv, nil, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, sink, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	require.NoError(t, err)

	waitForMessage(t, sink, 5*time.Second, func(m adactor.PublishedMessage) bool {
		return m.Topic == "homeassistant/number/"+inverterDeviceId("3031050001ABCD")+"/timed_charge_start_h/config"
	})

	// inverter swapped for another model
	registers.SetString(solis_modbus.SERIAL_NUMBER_REGISTER, solis_modbus.SERIAL_NUMBER_WORDS, "3631050002ABCD")
	context.Send(pid, identifyTick{})

	m := waitForMessage(t, sink, 5*time.Second, func(m adactor.PublishedMessage) bool {
		return m.Topic == "homeassistant/number/"+inverterDeviceId("3631050002ABCD")+"/timed_charge_start_h/config"
	})
	assert.True(m.Retain)

	res, err := context.RequestFuture(pid, domain.GetDevicesInfoRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	info := res.(domain.GetDevicesInfoResponse)
	assert.Equal("3631050002ABCD", info.Inverter.Serial)
	assert.Equal("Hybrid Gen5 3.6kW", info.Inverter.Model)

	context.Stop(pid)
	as.Shutdown()
}
