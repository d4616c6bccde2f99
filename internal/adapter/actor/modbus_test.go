package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/internal/util/actorutil"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spawnModbusActor(t *testing.T, registers *solis_modbus.RegisterMap, opts solis_modbus.IdentifyOptions, blacklist []string) (*actor.ActorSystem, *actor.PID) {
	inv, err := solis_modbus.CreateTestInverterModbusReader(registers, opts)
	require.NoError(t, err)

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)

	props := actor.PropsFromProducer(func() actor.Actor { return NewModbusActor(inv, blacklist, logger) })
	pid := as.Root.Spawn(props)
	return as, pid
}

func TestGetDevicesInfoModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnModbusActor(t, nil, solis_modbus.IdentifyOptions{ReadEPS: true}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetDevicesInfoRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetDevicesInfoResponse)

	assert.False(resp.HasResponseError())
	assert.Equal(solis_modbus.SOLIS_MANUFACTURER, resp.Inverter.Manufacturer, "Inverter manufacturer")
	assert.Equal("Hybrid Gen5 3kW", resp.Inverter.Model, "Inverter model")
	assert.Equal("3031050001ABCD", resp.Inverter.Serial, "Inverter serial")
	assert.Equal(solis_modbus.Of(solis_modbus.HYBRID, solis_modbus.X1, solis_modbus.EPS), resp.Inverter.Identification.Mask)

	context.Stop(pid)
	as.Shutdown()
}

func TestGetPointsModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnModbusActor(t, nil, solis_modbus.IdentifyOptions{}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetPointsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetPointsResponse)

	assert.Equal(solis_modbus.Identified, resp.Identification.State)
	assert.NotEmpty(resp.Sensors)
	assert.Len(resp.Numbers, 8)
	for _, s := range resp.Sensors {
		assert.NotEqual("grid_voltage_r", s.Key, "three phase point on a single phase inverter")
	}

	context.Stop(pid)
	as.Shutdown()
}

func TestUnknownInverterExposesNothing(t *testing.T) {

	assert := assert.New(t)

	registers := solis_modbus.DefaultTestRegisters()
	registers.ReadError = errors.New("i/o timeout")

	as, pid := spawnModbusActor(t, registers, solis_modbus.IdentifyOptions{}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetPointsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetPointsResponse)

	assert.Equal(solis_modbus.SERIAL_NUMBER_UNKNOWN, resp.Identification.Serial)
	assert.Equal(solis_modbus.Mask(0), resp.Identification.Mask)
	assert.Empty(resp.Sensors)
	assert.Empty(resp.Numbers)

	health, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	assert.NoError(err)
	assert.True(health.(domain.ActorHealthResponse).Healthy)

	context.Stop(pid)
	as.Shutdown()
}

func TestBlacklistedSerialExposesNothing(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnModbusActor(t, nil, solis_modbus.IdentifyOptions{}, []string{"303105"})
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetPointsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetPointsResponse)

	assert.Equal(solis_modbus.Of(solis_modbus.HYBRID, solis_modbus.X1), resp.Identification.Mask)
	assert.Empty(resp.Sensors)
	assert.Empty(resp.Numbers)

	context.Stop(pid)
	as.Shutdown()
}

func TestReadSensorsModbusActor(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnModbusActor(t, nil, solis_modbus.IdentifyOptions{}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.ReadSensorsRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.ReadSensorsResponse)
	assert.False(resp.HasResponseError())

	values := map[string]solis_modbus.PointValue{}
	for _, v := range resp.Values {
		values[v.Key] = v
	}
	assert.InDelta(352.1, values["pv_voltage_1"].Value, 1e-9)
	assert.InDelta(-2.0, values["battery_current"].Value, 1e-9)
	assert.InDelta(230.1, values["inverter_voltage"].Value, 1e-9)
	assert.Equal(float64(87), values["battery_soc"].Value)
	assert.Equal("2024-05-17 12:30:45", values["rtc"].Text)

	context.Stop(pid)
	as.Shutdown()
}

func TestWriteNumberModbusActor(t *testing.T) {

	assert := assert.New(t)

	registers := solis_modbus.DefaultTestRegisters()
	as, pid := spawnModbusActor(t, registers, solis_modbus.IdentifyOptions{}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.WriteNumberRequest{Key: "timed_charge_start_h", Value: 3}, 5*time.Second).Result()
	assert.NoError(err)
	resp := result.(domain.WriteNumberResponse)
	assert.False(resp.HasResponseError())
	assert.Equal(uint16(3), registers.Holding(43143))

	result, err = context.RequestFuture(pid, domain.WriteNumberRequest{Key: "timed_charge_start_h", Value: 30}, 5*time.Second).Result()
	assert.NoError(err)
	assert.ErrorIs(result.(domain.WriteNumberResponse).GetResponseError(), solis_modbus.ErrOutOfRange)

	result, err = context.RequestFuture(pid, domain.WriteNumberRequest{Key: "timed_charge_start_h", Value: 5.4}, 5*time.Second).Result()
	assert.NoError(err)
	assert.ErrorIs(result.(domain.WriteNumberResponse).GetResponseError(), solis_modbus.ErrInvalidNumber)
	assert.Equal(uint16(3), registers.Holding(43143))

	result, err = context.RequestFuture(pid, domain.WriteNumberRequest{Key: "pv_voltage_1", Value: 1}, 5*time.Second).Result()
	assert.NoError(err)
	assert.ErrorIs(result.(domain.WriteNumberResponse).GetResponseError(), ErrPointNotAvailable)

	result, err = context.RequestFuture(pid, domain.ReadNumbersRequest{}, 5*time.Second).Result()
	assert.NoError(err)
	numbers := result.(domain.ReadNumbersResponse)
	assert.Equal("timed_charge_start_h", numbers.Values[0].Key)
	assert.Equal(float64(3), numbers.Values[0].Value)

	context.Stop(pid)
	as.Shutdown()
}

func TestIdentifyModbusActor(t *testing.T) {

	assert := assert.New(t)

	registers := solis_modbus.DefaultTestRegisters()
	as, pid := spawnModbusActor(t, registers, solis_modbus.IdentifyOptions{}, nil)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.IdentifyRequest{}, 5*time.Second).Result()
	assert.NoError(err)
	resp := result.(domain.IdentifyResponse)
	assert.False(resp.Changed)

	// inverter replaced by an unknown model
	registers.SetString(solis_modbus.SERIAL_NUMBER_REGISTER, solis_modbus.SERIAL_NUMBER_WORDS, "SD10000000XXXX")
	result, err = context.RequestFuture(pid, domain.IdentifyRequest{}, 5*time.Second).Result()
	assert.NoError(err)
	resp = result.(domain.IdentifyResponse)
	assert.True(resp.Changed)
	assert.Equal(solis_modbus.IdentifiedUnknown, resp.Identification.State)

	result, err = context.RequestFuture(pid, domain.GetPointsRequest{}, 5*time.Second).Result()
	assert.NoError(err)
	assert.Empty(result.(domain.GetPointsResponse).Sensors)

	context.Stop(pid)
	as.Shutdown()
}

// dialFailReader behaves like a TCP reader: reads fail while closed and the
// failOpen-th Open call fails to dial.
type dialFailReader struct {
	solis_modbus.InverterModbusReader
	mu       sync.Mutex
	opens    int
	failOpen int
	closed   bool
}

func (r *dialFailReader) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens++
	if r.opens == r.failOpen {
		r.closed = true
		return errors.New("dial tcp: i/o timeout")
	}
	r.closed = false
	return r.InverterModbusReader.Open()
}

func (r *dialFailReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.InverterModbusReader.Close()
}

func (r *dialFailReader) ReadSensor(p solis_modbus.SensorPoint) (*solis_modbus.PointValue, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, errors.New("connection closed")
	}
	return r.InverterModbusReader.ReadSensor(p)
}

func (r *dialFailReader) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens
}

func TestIdentifyReopenFailureRestartsConnection(t *testing.T) {

	assert := assert.New(t)

	inner, err := solis_modbus.CreateTestInverterModbusReader(nil, solis_modbus.IdentifyOptions{})
	require.NoError(t, err)
	inv := &dialFailReader{InverterModbusReader: inner, failOpen: 2}

	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return NewModbusActor(inv, nil, logger) }))

	result, err := context.RequestFuture(pid, domain.IdentifyRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.True(result.(domain.IdentifyResponse).HasResponseError())

	// the supervisor restarts the actor, which opens the connection again
	assert.Eventually(func() bool {
		res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 500*time.Millisecond).Result()
		if err != nil {
			return false
		}
		return res.(domain.ActorHealthResponse).Healthy
	}, 5*time.Second, 100*time.Millisecond)
	assert.Equal(3, inv.openCount())

	result, err = context.RequestFuture(pid, domain.ReadSensorsRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	sensors := result.(domain.ReadSensorsResponse)
	assert.False(sensors.HasResponseError())
	assert.NotEmpty(sensors.Values)

	context.Stop(pid)
	as.Shutdown()
}
