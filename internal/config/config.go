package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDDetector string
	MQTTClientIDRelay    string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicJump     string
	TopicAnnounce string

	// Device identity: the human-readable name the relay matches against
	// during discovery (exact string match).
	DeviceName string

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string

	// Accelerometer range: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Digital Low Pass Filter configuration (0-7)
	IMUDLPFConfig byte
	// Sample rate divider (output rate = internal rate / (1 + div))
	IMUSampleRateDiv byte
	// Accelerometer DLPF configuration (0-7)
	IMUAccelDLPF byte

	// Indicator LED pin name (empty = no indicator)
	LEDPin string

	// Calibration
	CalSampleCount       int // samples in the calibration window
	CalSampleInterval    int // milliseconds between calibration samples
	SensorReadyTimeoutMS int // bounded wait for a sensor slot to fill

	// Inference loop
	LoopInterval int // milliseconds between inference cycles

	// Classifier weights (empty = embedded default model)
	ModelPath string

	// Relay → game trigger: "ws" or "serial"
	GameTrigger    string
	GameWSURL      string
	GameSerialPort string
	GameSerialBaud int

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for
//     initialization, read lock for Get().
//
// External code must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_DETECTOR":
		c.MQTTClientIDDetector = value
	case "MQTT_CLIENT_ID_RELAY":
		c.MQTTClientIDRelay = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_JUMP":
		c.TopicJump = value
	case "TOPIC_ANNOUNCE":
		c.TopicAnnounce = value

	// Device identity
	case "DEVICE_NAME":
		c.DeviceName = value

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_DLPF_CFG":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_DLPF_CFG %q: %w", value, err)
		}
		if val < 0 || val > 7 {
			return fmt.Errorf("IMU_DLPF_CFG must be 0-7, got %d", val)
		}
		c.IMUDLPFConfig = byte(val)
	case "IMU_SMPLRT_DIV":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SMPLRT_DIV %q: %w", value, err)
		}
		if val < 0 || val > 255 {
			return fmt.Errorf("IMU_SMPLRT_DIV must be 0-255, got %d", val)
		}
		c.IMUSampleRateDiv = byte(val)
	case "IMU_ACCEL_DLPF":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_DLPF %q: %w", value, err)
		}
		if val < 0 || val > 7 {
			return fmt.Errorf("IMU_ACCEL_DLPF must be 0-7, got %d", val)
		}
		c.IMUAccelDLPF = byte(val)

	// Indicator
	case "LED_PIN":
		c.LEDPin = value

	// Calibration
	case "CAL_SAMPLE_COUNT":
		count, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAL_SAMPLE_COUNT %q: %w", value, err)
		}
		if count <= 0 {
			return fmt.Errorf("CAL_SAMPLE_COUNT must be positive, got %d", count)
		}
		c.CalSampleCount = count
	case "CAL_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAL_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.CalSampleInterval = interval
	case "SENSOR_READY_TIMEOUT":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SENSOR_READY_TIMEOUT %q: %w", value, err)
		}
		c.SensorReadyTimeoutMS = timeout

	// Inference loop
	case "LOOP_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOOP_INTERVAL %q: %w", value, err)
		}
		c.LoopInterval = interval

	// Classifier
	case "MODEL_PATH":
		c.ModelPath = value

	// Relay / game trigger
	case "GAME_TRIGGER":
		if value != "ws" && value != "serial" {
			return fmt.Errorf("GAME_TRIGGER must be \"ws\" or \"serial\", got %q", value)
		}
		c.GameTrigger = value
	case "GAME_WS_URL":
		c.GameWSURL = value
	case "GAME_SERIAL_PORT":
		c.GameSerialPort = value
	case "GAME_SERIAL_BAUD":
		baud, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GAME_SERIAL_BAUD %q: %w", value, err)
		}
		c.GameSerialBaud = baud

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.DeviceName == "" {
		return fmt.Errorf("DEVICE_NAME is required")
	}
	if c.TopicJump == "" {
		return fmt.Errorf("TOPIC_JUMP is required")
	}
	if c.TopicAnnounce == "" {
		return fmt.Errorf("TOPIC_ANNOUNCE is required")
	}
	if c.IMUSPIDevice == "" {
		return fmt.Errorf("IMU_SPI_DEVICE is required")
	}
	if c.CalSampleCount == 0 {
		return fmt.Errorf("CAL_SAMPLE_COUNT is required")
	}
	if c.CalSampleInterval == 0 {
		return fmt.Errorf("CAL_SAMPLE_INTERVAL is required")
	}
	if c.SensorReadyTimeoutMS == 0 {
		return fmt.Errorf("SENSOR_READY_TIMEOUT is required")
	}
	if c.LoopInterval == 0 {
		return fmt.Errorf("LOOP_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
