package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/solis2mqtt/internal/config"
	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/internal/core/events"
	. "github.com/berfenger/solis2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	// numbers change rarely, they are read once every NUMBERS_POLL_RATIO ticks
	NUMBERS_POLL_RATIO = 6
)

type PollerActor struct {
	ActorWithStates
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	modbusActor  *actor.PID
	config       *config.Config
	eventStream  *eventstream.EventStream
	numbersCount uint
	lastPollOk   bool

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, modbusActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:       config,
		modbusActor:  modbusActor,
		stash:        &Stash{},
		logger:       ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream:  eventStream,
		numbersCount: NUMBERS_POLL_RATIO,
		lastPollOk:   true,
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(pollerIdleState{actor: act})
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

func (state *PollerActor) pollInterval() time.Duration {
	return time.Duration(state.config.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (state *PollerActor) publish(evs []any) {
	for _, ev := range evs {
		state.eventStream.Publish(ev)
	}
}

// Idle state

type pollerIdleState struct {
	actor *PollerActor
}

func (s pollerIdleState) Name() string {
	return "idle"
}

func (s pollerIdleState) Receive(ctx actor.Context) {
	state := s.actor
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@idle started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		if state.config.MonitorConfig.PollIntervalMillis > 0 {
			ctx.Send(ctx.Self(), pollTick{})
		}
	case *actor.Restarting:
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   s.Name(),
		})
	case pollTick:
		state.logger.Debug("poller@idle tick")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.ReadSensorsRequest{}, 2*state.pollInterval()), func(err error) any {
			return domain.ReadSensorsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		if state.numbersCount >= NUMBERS_POLL_RATIO {
			state.numbersCount = 0
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.modbusActor, domain.ReadNumbersRequest{}, 2*state.pollInterval()), func(err error) any {
				return domain.ReadNumbersResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		} else {
			state.numbersCount++
		}
		state.BecomeStacked(pollerPollingState{actor: state})
	case domain.ReadNumbersResponse:
		state.logger.Debug("poller@idle ReadNumbersResponse")
		if msg.HasResponseError() {
			state.logger.Warn("poller@idle read numbers", zap.Error(msg.GetResponseError()))
			return
		}
		state.publish(events.NumberValuesToUpdateEvents(msg.Values))
	default:
		state.logger.Debug("poller@idle ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Polling state: waiting for the sensor values of the current tick.

type pollerPollingState struct {
	actor *PollerActor
}

func (s pollerPollingState) Name() string {
	return "polling"
}

func (s pollerPollingState) Receive(ctx actor.Context) {
	state := s.actor
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   s.Name(),
		})
	case domain.ReadSensorsResponse:
		if msg.HasResponseError() {
			if state.lastPollOk {
				state.logger.Error("poller@polling ReadSensorsResponse error", zap.Error(msg.GetResponseError()))
			}
			state.lastPollOk = false
		} else {
			state.logger.Debug("poller@polling ReadSensorsResponse", zap.Int("values", len(msg.Values)))
			state.lastPollOk = true
			state.publish(events.SensorValuesToUpdateEvents(msg.Values))
		}

		// schedule next tick
		state.scheduler.RequestOnce(state.pollInterval(), ctx.Self(), pollTick{})
		state.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("poller@polling stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
