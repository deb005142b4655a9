package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validConfig = `# gesture detector test config
MQTT_BROKER = tcp://localhost:1883
MQTT_CLIENT_ID_DETECTOR = gesture-detector
MQTT_CLIENT_ID_RELAY = gesture-relay

TOPIC_JUMP = gesture/jump
TOPIC_ANNOUNCE = gesture/announce
DEVICE_NAME = dino-jump-sensor

IMU_SPI_DEVICE = /dev/spidev0.0
IMU_CS_PIN = GPIO8
IMU_ACCEL_RANGE = 1
IMU_DLPF_CFG = 3
IMU_SMPLRT_DIV = 9
IMU_ACCEL_DLPF = 3

LED_PIN = GPIO17

CAL_SAMPLE_COUNT = 200
CAL_SAMPLE_INTERVAL = 10
SENSOR_READY_TIMEOUT = 500
LOOP_INTERVAL = 100

GAME_TRIGGER = ws
GAME_WS_URL = ws://localhost:8081/control
GAME_SERIAL_BAUD = 115200

WEB_SERVER_PORT = 8080
DISPLAY_I2C_ADDR = 0x3C
DISPLAY_UPDATE_INTERVAL = 250
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gesture_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	require.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	require.Equal(t, "gesture/jump", cfg.TopicJump)
	require.Equal(t, "gesture/announce", cfg.TopicAnnounce)
	require.Equal(t, "dino-jump-sensor", cfg.DeviceName)
	require.Equal(t, "/dev/spidev0.0", cfg.IMUSPIDevice)
	require.Equal(t, byte(1), cfg.IMUAccelRange)
	require.Equal(t, 200, cfg.CalSampleCount)
	require.Equal(t, 10, cfg.CalSampleInterval)
	require.Equal(t, 500, cfg.SensorReadyTimeoutMS)
	require.Equal(t, 100, cfg.LoopInterval)
	require.Equal(t, "ws", cfg.GameTrigger)
	require.Equal(t, uint16(0x3C), cfg.DisplayI2CAddr)
}

func TestLoadMissingRequiredField(t *testing.T) {
	// Drop the broker line; validation must reject the file.
	cfg := `TOPIC_JUMP = gesture/jump
TOPIC_ANNOUNCE = gesture/announce
DEVICE_NAME = dino-jump-sensor
IMU_SPI_DEVICE = /dev/spidev0.0
CAL_SAMPLE_COUNT = 200
CAL_SAMPLE_INTERVAL = 10
SENSOR_READY_TIMEOUT = 500
LOOP_INTERVAL = 100
`
	_, err := Load(writeConfig(t, cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "MQTT_BROKER")
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"BOGUS_KEY = 1\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "BOGUS_KEY")
}

func TestLoadRejectsOutOfRangeAccelRange(t *testing.T) {
	_, err := Load(writeConfig(t, "IMU_ACCEL_RANGE = 7\n"))
	require.Error(t, err)
}

func TestLoadRejectsBadTriggerKind(t *testing.T) {
	_, err := Load(writeConfig(t, "GAME_TRIGGER = carrier-pigeon\n"))
	require.Error(t, err)
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, "THIS IS NOT KEY VALUE\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
