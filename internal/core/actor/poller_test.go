package actor

import (
	"testing"
	"time"

	adactor "github.com/berfenger/solis2mqtt/internal/adapter/actor"
	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/internal/util"
	"github.com/berfenger/solis2mqtt/internal/util/actorutil"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPollerActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.MonitorConfig.PollIntervalMillis = 1000
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	inv, err := solis_modbus.CreateTestInverterModbusReader(nil, solis_modbus.IdentifyOptions{})
	require.NoError(t, err)
	modbusPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return adactor.NewModbusActor(inv, nil, logger) }))

	es := &eventstream.EventStream{}
	received := make(chan any, 1024)
	sub := es.Subscribe(func(evt any) {
		received <- evt
	})
	defer es.Unsubscribe(sub)

	pollerPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor { return NewPollerActor(&cfg, modbusPID, es, logger) }))

	var soc *domain.FloatSensorUpdateEvent
	var number *domain.InputNumberSensorUpdateEvent
	deadline := time.After(5 * time.Second)
	for soc == nil || number == nil {
		select {
		case evt := <-received:
			switch ev := evt.(type) {
			case domain.FloatSensorUpdateEvent:
				if ev.Id == "battery_soc" {
					soc = &ev
				}
			case domain.InputNumberSensorUpdateEvent:
				if ev.Id == "timed_charge_start_h" {
					number = &ev
				}
			}
		case <-deadline:
			t.Fatal("poller published no values")
		}
	}
	assert.Equal(float64(87), soc.Value)
	assert.Equal(float64(2), number.Value)

	res, err := context.RequestFuture(pollerPID, domain.ActorHealthRequest{}, 2*time.Second).Result()
	assert.NoError(err)
	assert.True(res.(domain.ActorHealthResponse).Healthy)

	context.Stop(pollerPID)
	context.Stop(modbusPID)
	as.Shutdown()
}
