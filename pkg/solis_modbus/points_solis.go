package solis_modbus

// Solis hybrid register map.
// A point can be declared more than once with different requirements when its
// parameters differ per inverter type (see the X1/X3 grid points).

const (
	UNIT_KWH     = "kWh"
	UNIT_WATT    = "W"
	UNIT_VA      = "VA"
	UNIT_VAR     = "var"
	UNIT_VOLT    = "V"
	UNIT_AMPERE  = "A"
	UNIT_HERTZ   = "Hz"
	UNIT_CELSIUS = "°C"
	UNIT_PERCENT = "%"
	UNIT_HOURS   = "h"
	UNIT_MINUTES = "min"
)

func input(key, name string, register uint16) SensorPoint {
	return SensorPoint{
		Key:          key,
		Name:         name,
		Register:     register,
		RegisterType: REG_INPUT,
		ValueType:    REGISTER_U16,
		Scale:        1,
	}
}

func energy(key, name string, register uint16, valueType ValueType, scale float64) SensorPoint {
	p := input(key, name, register)
	p.ValueType = valueType
	p.Scale = scale
	if scale < 1 {
		p.Rounding = 1
	}
	p.UnitOfMeasurement = UNIT_KWH
	p.DeviceClass = DEVICE_CLASS_ENERGY
	p.StateClass = STATE_CLASS_TOTAL_INCREASING
	return p
}

func scaled(p SensorPoint, scale float64, rounding uint) SensorPoint {
	p.Scale = scale
	p.Rounding = rounding
	return p
}

func measured(p SensorPoint, unit, deviceClass string) SensorPoint {
	p.UnitOfMeasurement = unit
	p.DeviceClass = deviceClass
	p.StateClass = STATE_CLASS_MEASUREMENT
	return p
}

func typed(p SensorPoint, valueType ValueType) SensorPoint {
	p.ValueType = valueType
	return p
}

func icon(p SensorPoint, icon string) SensorPoint {
	p.Icon = icon
	return p
}

func disabled(p SensorPoint) SensorPoint {
	p.DisabledByDefault = true
	return p
}

func diagnostic(p SensorPoint) SensorPoint {
	p.EntityCategory = ENTITY_CATEGORY_DIAGNOSTIC
	return p
}

func sensor(req Mask, p SensorPoint) Point[SensorPoint] {
	return Point[SensorPoint]{Requirement: req, Payload: p}
}

func clockNumber(key, name string, register uint16, max float64, unit string) Point[NumberPoint] {
	return Point[NumberPoint]{
		Requirement: Of(HYBRID),
		Payload: NumberPoint{
			Key:               key,
			Name:              name,
			Register:          register,
			Min:               0,
			Max:               max,
			Step:              1,
			UnitOfMeasurement: unit,
			EntityCategory:    ENTITY_CATEGORY_CONFIG,
			Icon:              "mdi:battery-clock",
		},
	}
}

var (
	hybrid   = Of(HYBRID)
	hybridX1 = Of(HYBRID, X1)
	hybridX3 = Of(HYBRID, X3)
)

func SolisNumberPoints() []Point[NumberPoint] {
	return []Point[NumberPoint]{
		clockNumber("timed_charge_start_h", "Timed Charge Start Hours", 43143, 23, UNIT_HOURS),
		clockNumber("timed_charge_start_m", "Timed Charge Start Minutes", 43144, 59, UNIT_MINUTES),
		clockNumber("timed_charge_end_h", "Timed Charge End Hours", 43145, 23, UNIT_HOURS),
		clockNumber("timed_charge_end_m", "Timed Charge End Minutes", 43146, 59, UNIT_MINUTES),
		clockNumber("timed_discharge_start_h", "Timed Discharge Start Hours", 43147, 23, UNIT_HOURS),
		clockNumber("timed_discharge_start_m", "Timed Discharge Start Minutes", 43148, 59, UNIT_MINUTES),
		clockNumber("timed_discharge_end_h", "Timed Discharge End Hours", 43149, 23, UNIT_HOURS),
		clockNumber("timed_discharge_end_m", "Timed Discharge End Minutes", 43150, 59, UNIT_MINUTES),
	}
}

func SolisSensorPoints() []Point[SensorPoint] {
	serial := input("serialnumber", "Serial Number", SERIAL_NUMBER_REGISTER)
	serial.ValueType = REGISTER_STR
	serial.WordCount = SERIAL_NUMBER_WORDS

	rtc := input("rtc", "RTC", 33023)
	rtc.ValueType = REGISTER_WORDS
	rtc.WordCount = 6

	return []Point[SensorPoint]{
		// info
		sensor(hybrid, icon(disabled(diagnostic(serial)), "mdi:information")),
		sensor(hybrid, icon(disabled(diagnostic(rtc)), "mdi:clock")),

		// generation
		sensor(hybrid, icon(energy("power_generation_total", "Power Generation Total", 33029, REGISTER_U32, 1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_this_month", "Power Generation This Month", 33031, REGISTER_U32, 1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_last_month", "Power Generation Last Month", 33033, REGISTER_U32, 1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_today", "Power Generation Today", 33035, REGISTER_U16, 0.1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_yesterday", "Power Generation Yesterday", 33036, REGISTER_U16, 0.1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_this_year", "Power Generation This Year", 33037, REGISTER_U32, 1), "mdi:solar-power")),
		sensor(hybrid, icon(energy("power_generation_last_year", "Power Generation Last Year", 33039, REGISTER_U32, 1), "mdi:solar-power")),

		// pv strings
		sensor(hybrid, scaled(measured(input("pv_voltage_1", "PV Voltage 1", 33049), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybrid, icon(scaled(measured(input("pv_current_1", "PV Current 1", 33050), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1), "mdi:current-dc")),
		sensor(hybrid, scaled(measured(input("pv_voltage_2", "PV Voltage 2", 33051), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybrid, icon(scaled(measured(input("pv_current_2", "PV Current 2", 33052), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1), "mdi:current-dc")),
		sensor(hybrid, disabled(scaled(measured(input("pv_voltage_3", "PV Voltage 3", 33053), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1))),
		sensor(hybrid, disabled(icon(scaled(measured(input("pv_current_3", "PV Current 3", 33054), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1), "mdi:current-dc"))),
		sensor(hybrid, disabled(scaled(measured(input("pv_voltage_4", "PV Voltage 4", 33055), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1))),
		sensor(hybrid, disabled(icon(scaled(measured(input("pv_current_4", "PV Current 4", 33056), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1), "mdi:current-dc"))),
		sensor(hybrid, icon(typed(measured(input("pv_total_power", "PV Total Power", 33057), UNIT_WATT, DEVICE_CLASS_POWER), REGISTER_U32), "mdi:solar-power-variant")),

		// grid, single phase
		sensor(hybridX1, scaled(measured(input("inverter_voltage", "Inverter Voltage", 33073), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybridX1, scaled(measured(input("inverter_current", "Inverter Current", 33076), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),

		// grid, three phase
		sensor(hybridX3, scaled(measured(input("grid_voltage_r", "Inverter Voltage R", 33073), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybridX3, scaled(measured(input("grid_voltage_s", "Inverter Voltage S", 33074), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybridX3, scaled(measured(input("grid_voltage_t", "Inverter Voltage T", 33075), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybridX3, scaled(measured(input("grid_current_r", "Inverter Current R", 33076), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),
		sensor(hybridX3, scaled(measured(input("grid_current_s", "Inverter Current S", 33077), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),
		sensor(hybridX3, scaled(measured(input("grid_current_t", "Inverter Current T", 33078), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),

		// power
		sensor(hybrid, typed(measured(input("activepower", "Active Power", 33079), UNIT_WATT, DEVICE_CLASS_POWER), REGISTER_S32)),
		sensor(hybrid, typed(measured(input("reactivepower", "Reactive Power", 33081), UNIT_VAR, DEVICE_CLASS_REACTIVE_POWER), REGISTER_S32)),
		sensor(hybrid, typed(measured(input("apparentpower", "Apparent Power", 33083), UNIT_VA, DEVICE_CLASS_APPARENT_POWER), REGISTER_S32)),
		sensor(hybrid, diagnostic(typed(scaled(measured(input("inverter_temperature", "Inverter Temperature", 33093), UNIT_CELSIUS, DEVICE_CLASS_TEMPERATURE), 0.1, 1), REGISTER_S16))),
		sensor(hybrid, scaled(measured(input("grid_frequency", "Inverter Frequency", 33094), UNIT_HERTZ, DEVICE_CLASS_FREQUENCY), 0.01, 2)),

		// meter
		sensor(hybrid, typed(measured(input("meter_total_activepower", "Meter Total Active Power", 33126), UNIT_WATT, DEVICE_CLASS_POWER), REGISTER_U32)),
		sensor(hybrid, scaled(measured(input("meter_voltage", "Meter Voltage", 33128), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybrid, scaled(measured(input("meter_current", "Meter Current", 33129), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.01, 2)),
		sensor(hybrid, typed(measured(input("meter_activepower", "Meter Active Power", 33130), UNIT_WATT, DEVICE_CLASS_POWER), REGISTER_S32)),

		// battery
		sensor(hybrid, scaled(measured(input("battery_voltage", "Battery Voltage", 33133), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.1, 1)),
		sensor(hybrid, typed(scaled(measured(input("battery_current", "Battery Current", 33134), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1), REGISTER_S16)),
		sensor(hybrid, measured(input("battery_soc", "Battery SOC", 33139), UNIT_PERCENT, DEVICE_CLASS_BATTERY)),
		sensor(hybrid, diagnostic(icon(measured(input("battery_soh", "Battery SOH", 33140), UNIT_PERCENT, ""), "mdi:battery-heart"))),
		sensor(hybrid, scaled(measured(input("bms_battery_voltage", "BMS Battery Voltage", 33141), UNIT_VOLT, DEVICE_CLASS_VOLTAGE), 0.01, 2)),
		sensor(hybrid, typed(scaled(measured(input("bms_battery_current", "BMS Battery Current", 33142), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.01, 2), REGISTER_S16)),
		sensor(hybrid, scaled(measured(input("bms_battery_charge_limit", "BMS Battery Charge Limit", 33143), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),
		sensor(hybrid, scaled(measured(input("bms_battery_discharge_limit", "BMS Battery Discharge Limit", 33144), UNIT_AMPERE, DEVICE_CLASS_CURRENT), 0.1, 1)),

		// loads
		sensor(hybrid, icon(measured(input("house_load", "House Load", 33147), UNIT_WATT, DEVICE_CLASS_POWER), "mdi:home")),
		sensor(hybrid, icon(measured(input("bypass_load", "Bypass Load", 33148), UNIT_WATT, DEVICE_CLASS_POWER), "mdi:home")),
		sensor(hybrid, icon(typed(measured(input("battery_power", "Battery Power", 33149), UNIT_WATT, DEVICE_CLASS_POWER), REGISTER_S32), "mdi:home")),

		// battery energy
		sensor(hybrid, energy("total_battery_charge", "Total Battery Charge", 33161, REGISTER_U32, 1)),
		sensor(hybrid, energy("battery_charge_today", "Battery Charge Today", 33163, REGISTER_U16, 0.1)),
		sensor(hybrid, energy("battery_charge_yesterday", "Battery Charge Yesterday", 33164, REGISTER_U16, 0.1)),
		sensor(hybrid, energy("total_battery_discharge", "Total Battery Discharge", 33165, REGISTER_U32, 1)),
		sensor(hybrid, energy("battery_discharge_today", "Battery Discharge Today", 33167, REGISTER_U16, 0.1)),
		sensor(hybrid, energy("battery_discharge_yesterday", "Battery Discharge Yesterday", 33168, REGISTER_U16, 0.1)),

		// grid energy
		sensor(hybrid, disabled(icon(energy("grid_import_total", "Grid Import Total", 33169, REGISTER_U32, 1), "mdi:home-import-outline"))),
		sensor(hybrid, disabled(icon(energy("grid_import_today", "Grid Import Today", 33171, REGISTER_U16, 0.1), "mdi:home-import-outline"))),
		sensor(hybrid, disabled(icon(energy("grid_import_yesterday", "Grid Import Yesterday", 33172, REGISTER_U16, 0.1), "mdi:home-import-outline"))),
		sensor(hybrid, disabled(icon(energy("grid_export_total", "Grid Export Total", 33173, REGISTER_U32, 1), "mdi:home-export-outline"))),
		sensor(hybrid, disabled(icon(energy("grid_export_today", "Grid Export Today", 33175, REGISTER_U16, 0.1), "mdi:home-export-outline"))),
		sensor(hybrid, disabled(icon(energy("grid_export_yesterday", "Grid Export Yesterday", 33176, REGISTER_U16, 0.1), "mdi:home-export-outline"))),

		// house energy
		sensor(hybrid, icon(energy("house_load_total", "House Load Total", 33177, REGISTER_U32, 1), "mdi:home")),
		sensor(hybrid, icon(energy("house_load_today", "House Load Today", 33179, REGISTER_U16, 0.1), "mdi:home")),
		sensor(hybrid, icon(energy("house_load_yesterday", "House Load Yesterday", 33180, REGISTER_U16, 0.1), "mdi:home")),
	}
}
