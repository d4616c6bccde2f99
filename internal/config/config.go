package config

import (
	"errors"
	"regexp"
	"strings"

	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel          zapcore.Level
	InverterModbusTcp InverterModbusTCPConfig `mapstructure:"inverter_modbus_tcp"`
	Inverter          InverterConfig          `mapstructure:"inverter"`
	MQTT              MQTTConfig              `mapstructure:"mqtt"`
	MonitorConfig     MonitorConfig           `mapstructure:"monitor"`
	Port              uint                    `mapstructure:"port"`
	HttpLog           bool                    `mapstructure:"http_log"`
}

type InverterModbusTCPConfig struct {
	Host          string
	Port          uint
	UnitId        uint8  `mapstructure:"unit_id"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
	// some firmwares answer the serial number with each register byte pair swapped
	SwapBytes bool `mapstructure:"swap_bytes"`
}

// InverterConfig holds the capability flags that can not be read from the inverter.
type InverterConfig struct {
	ReadEPS      bool     `mapstructure:"read_eps"`
	ReadDCB      bool     `mapstructure:"read_dcb"`
	Blacklist    []string `mapstructure:"blacklist"`
	IdentifyCron string   `mapstructure:"identify_cron"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	if !baseTopicRegexp.MatchString(lowerBaseTopic) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// CheckBlacklist trims the serial prefixes, dropping empty entries. Prefixes are
// compared with the serial as read, case included. An empty prefix would blacklist
// every device.
func CheckBlacklist(blacklist []string) []string {
	out := make([]string, 0, len(blacklist))
	for _, prefix := range blacklist {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			out = append(out, prefix)
		}
	}
	return out
}

// CheckIdentifyCron validates the re-identification schedule. An empty expression disables it.
func CheckIdentifyCron(expr string) error {
	if expr == "" {
		return nil
	}
	_, err := quartz.NewCronTrigger(expr)
	return err
}
