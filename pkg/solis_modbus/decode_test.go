package solis_modbus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSensor(t *testing.T) {

	tests := []struct {
		name     string
		point    SensorPoint
		regs     []uint16
		expected float64
	}{
		{"u16 scaled", SensorPoint{Key: "v", ValueType: REGISTER_U16, Scale: 0.1, Rounding: 1}, []uint16{2301}, 230.1},
		{"s16 negative", SensorPoint{Key: "i", ValueType: REGISTER_S16, Scale: 0.1, Rounding: 1}, []uint16{0xFFEC}, -2},
		{"u32", SensorPoint{Key: "e", ValueType: REGISTER_U32, Scale: 1}, []uint16{0x0001, 0x0002}, 65538},
		{"s32 negative", SensorPoint{Key: "p", ValueType: REGISTER_S32}, []uint16{0xFFFF, 0xFC18}, -1000},
		{"frequency", SensorPoint{Key: "f", ValueType: REGISTER_U16, Scale: 0.01, Rounding: 2}, []uint16{5002}, 50.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeSensor(tt.point, tt.regs)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, v.Value, 1e-9)
			assert.False(t, v.IsText)
			assert.Equal(t, tt.point.Rounding, v.Decimals)
		})
	}
}

func TestDecodeTextSensors(t *testing.T) {

	require := require.New(t)

	regs := DefaultTestRegisters()
	points := map[string]SensorPoint{}
	for _, p := range SolisSensorPoints() {
		points[p.Payload.Key] = p.Payload
	}

	serialPoint := points["serialnumber"]
	raw, err := regs.ReadInputRegisters(serialPoint.Register, serialPoint.Words())
	require.NoError(err)
	v, err := DecodeSensor(serialPoint, raw)
	require.NoError(err)
	require.True(v.IsText)
	require.Equal("3031050001ABCD", v.Text)

	rtcPoint := points["rtc"]
	raw, err = regs.ReadInputRegisters(rtcPoint.Register, rtcPoint.Words())
	require.NoError(err)
	v, err = DecodeSensor(rtcPoint, raw)
	require.NoError(err)
	require.Equal("2024-05-17 12:30:45", v.Text)
}

func TestDecodeShortRead(t *testing.T) {

	_, err := DecodeSensor(SensorPoint{Key: "e", ValueType: REGISTER_U32}, []uint16{1})
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestEncodeNumber(t *testing.T) {

	assert := assert.New(t)

	p := NumberPoint{Key: "timed_charge_start_h", Min: 0, Max: 23, Step: 1}
	w, err := EncodeNumber(p, 22)
	assert.NoError(err)
	assert.Equal(uint16(22), w)

	_, err = EncodeNumber(p, 24)
	assert.ErrorIs(err, ErrOutOfRange)
	_, err = EncodeNumber(p, -1)
	assert.ErrorIs(err, ErrOutOfRange)
}

func TestEncodeNumberRejectsUnrepresentable(t *testing.T) {

	assert := assert.New(t)

	p := NumberPoint{Key: "timed_charge_start_h", Min: 0, Max: 23, Step: 1}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 5.4, 0.5} {
		_, err := EncodeNumber(p, v)
		assert.ErrorIs(err, ErrInvalidNumber, "%v", v)
	}

	// step larger than one
	p = NumberPoint{Key: "step_five", Min: 0, Max: 55, Step: 5}
	w, err := EncodeNumber(p, 15)
	assert.NoError(err)
	assert.Equal(uint16(15), w)
	_, err = EncodeNumber(p, 12)
	assert.ErrorIs(err, ErrInvalidNumber)
}
