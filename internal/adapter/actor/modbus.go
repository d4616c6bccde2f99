package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/solis2mqtt/internal/core/domain"
	"github.com/berfenger/solis2mqtt/internal/util/actorutil"
	"github.com/berfenger/solis2mqtt/pkg/solis_modbus"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const (
	MODBUS_TASK_TIMEOUT = 5 * time.Second
)

var ErrPointNotAvailable = errors.New("point not available for this inverter")

type ModbusActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	inverter  solis_modbus.InverterModbusReader
	blacklist []string
	sensors   []solis_modbus.SensorPoint
	numbers   []solis_modbus.NumberPoint
	logger    *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewModbusActor(inverter solis_modbus.InverterModbusReader, blacklist []string, logger *zap.Logger) *ModbusActor {
	act := &ModbusActor{
		inverter:  inverter,
		blacklist: blacklist,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_MODBUS, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ModbusActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ModbusActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("modbus@starting started")
		// Open identifies the inverter, the capability mask is fixed from here on
		if err := state.inverter.Open(); err != nil {
			panic(err)
		}
		state.admitPoints()
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.inverter.Close()
	default:
		state.logger.Debug("modbus@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ModbusActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("modbus@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MODBUS,
			Healthy: true,
			State:   state.inverter.Identify().State.String(),
		})
	case domain.GetPointsRequest:
		state.logger.Debug("modbus@default: GetPointsRequest")
		actorutil.ForRequest(msg).Respond(ctx, domain.GetPointsResponse{
			Identification: state.inverter.Identify(),
			Sensors:        state.sensors,
			Numbers:        state.numbers,
		})
	case domain.GetDevicesInfoRequest:
		state.logger.Debug("modbus@default: GetDevicesInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(ctx, state.getDevicesInfo, sender, func(err error) domain.GetDevicesInfoResponse {
			return domain.GetDevicesInfoResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.ReadSensorsRequest:
		state.logger.Debug("modbus@default: ReadSensorsRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(ctx, state.readSensors, sender, func(err error) domain.ReadSensorsResponse {
			return domain.ReadSensorsResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.ReadNumbersRequest:
		state.logger.Debug("modbus@default: ReadNumbersRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(ctx, state.readNumbers, sender, func(err error) domain.ReadNumbersResponse {
			return domain.ReadNumbersResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.WriteNumberRequest:
		state.logger.Debug("modbus@default: WriteNumberRequest", zap.String("key", msg.Key), zap.Float64("value", msg.Value))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(ctx, func() (*domain.WriteNumberResponse, error) {
			return state.writeNumber(msg.Key, msg.Value)
		}, sender, func(err error) domain.WriteNumberResponse {
			return domain.WriteNumberResponse{ActorResponseMixIn: errorResponse(err), Key: msg.Key}
		})
		state.behavior.BecomeStacked(state.WaitingModbus)
	case domain.IdentifyRequest:
		state.logger.Debug("modbus@default: IdentifyRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runTask(ctx, state.reidentify, sender, func(err error) domain.IdentifyResponse {
			return domain.IdentifyResponse{ActorResponseMixIn: errorResponse(err), Identification: state.inverter.Identify()}
		})
		state.behavior.BecomeStacked(state.WaitingModbus)
	case *actor.Restarting:
		state.inverter.Close()
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("modbus@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ModbusActor) WaitingModbus(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("modbus@WaitingModbus backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if resp, ok := msg.message.(domain.IdentifyResponse); ok {
			if resp.HasResponseError() {
				// the connection was closed for re-identification, let the supervisor reopen it
				state.logger.Error("modbus@WaitingModbus re-identification failed", zap.Error(resp.GetResponseError()))
				if msg.replyTo != nil {
					ctx.Send(msg.replyTo, msg.message)
				}
				panic(resp.GetResponseError())
			}
			state.admitPoints()
		}
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.inverter.Close()
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("modbus@WaitingModbus stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// admitPoints computes the point set for the current identification.
func (state *ModbusActor) admitPoints() {
	id := state.inverter.Identify()
	state.sensors = solis_modbus.FilterPoints(solis_modbus.SolisSensorPoints(), id, state.blacklist)
	state.numbers = solis_modbus.FilterPoints(solis_modbus.SolisNumberPoints(), id, state.blacklist)
	state.logger.Info("modbus: admitted points",
		zap.String("serial", id.Serial),
		zap.Stringer("capabilities", id.Mask),
		zap.Stringer("state", id.State),
		zap.Int("sensors", len(state.sensors)),
		zap.Int("numbers", len(state.numbers)))
}

func (a *ModbusActor) getDevicesInfo() (*domain.GetDevicesInfoResponse, error) {
	inverter, err := a.inverter.GetInfo()
	if err != nil {
		a.logger.Error("modbus: get info", zap.Error(err))
		return nil, err
	}
	return &domain.GetDevicesInfoResponse{
		Inverter: inverter,
	}, nil
}

// readSensors reads every admitted sensor. Points failing to read are skipped,
// the request fails only when nothing could be read.
func (a *ModbusActor) readSensors() (*domain.ReadSensorsResponse, error) {
	values := make([]solis_modbus.PointValue, 0, len(a.sensors))
	var errs []error
	for _, p := range a.sensors {
		v, err := a.inverter.ReadSensor(p)
		if err != nil {
			a.logger.Warn("modbus: read sensor", zap.String("key", p.Key), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		values = append(values, *v)
	}
	if len(values) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &domain.ReadSensorsResponse{Values: values}, nil
}

func (a *ModbusActor) readNumbers() (*domain.ReadNumbersResponse, error) {
	values := make([]solis_modbus.PointValue, 0, len(a.numbers))
	for _, p := range a.numbers {
		v, err := a.inverter.ReadNumber(p)
		if err != nil {
			a.logger.Warn("modbus: read number", zap.String("key", p.Key), zap.Error(err))
			return nil, err
		}
		values = append(values, *v)
	}
	return &domain.ReadNumbersResponse{Values: values}, nil
}

func (a *ModbusActor) writeNumber(key string, value float64) (*domain.WriteNumberResponse, error) {
	for _, p := range a.numbers {
		if p.Key == key {
			if err := a.inverter.WriteNumber(p, value); err != nil {
				a.logger.Error("modbus: write number", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			return &domain.WriteNumberResponse{Key: key, Value: value}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPointNotAvailable, key)
}

// reidentify reopens the connection. A failed reopen leaves it closed and is
// escalated to the supervisor by WaitingModbus.
func (a *ModbusActor) reidentify() (*domain.IdentifyResponse, error) {
	previous := a.inverter.Identify()
	a.inverter.Close()
	if err := a.inverter.Open(); err != nil {
		return nil, err
	}
	id := a.inverter.Identify()
	return &domain.IdentifyResponse{
		Identification: id,
		Changed:        id.Mask != previous.Mask || id.Serial != previous.Serial,
	}, nil
}

func runTask[T any](ctx actor.Context, fn func() (*T, error), sender *actor.PID, recoverFn func(error) T) {
	actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, fn),
		mapTaskResult[T](sender)).Recover(func(err error) backgroundTaskResult {
		return backgroundTaskResult{
			message: recoverFn(err),
			replyTo: sender,
		}
	}).WithTimeout(MODBUS_TASK_TIMEOUT).PipeTo(ctx.Self())
}

func errorResponse(err error) domain.ActorResponseMixIn {
	return domain.ActorResponseMixIn{
		ResponseError: err,
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
