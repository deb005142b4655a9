package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gesture_detector/internal/config"
)

// displayData holds the latest pipeline state for the status panel.
type displayData struct {
	mu sync.RWMutex

	deviceName   string
	haveDevice   bool
	jumpCount    uint64
	lastJumpTime time.Time
}

// RunDisplay drives an SSD1306 status panel: announced device name, jump
// count, time since last jump.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, cfg.DisplayI2CAddr, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	annToken := client.Subscribe(cfg.TopicAnnounce, 0, func(_ mqtt.Client, msg mqtt.Message) {
		data.mu.Lock()
		data.deviceName = string(msg.Payload())
		data.haveDevice = true
		data.mu.Unlock()
	})
	annToken.Wait()
	if annToken.Error() != nil {
		return annToken.Error()
	}

	jumpToken := client.Subscribe(cfg.TopicJump, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if len(msg.Payload()) == 0 || msg.Payload()[0] != 1 {
			return
		}
		data.mu.Lock()
		data.jumpCount++
		data.lastJumpTime = time.Now()
		data.mu.Unlock()
	})
	jumpToken.Wait()
	if jumpToken.Error() != nil {
		return jumpToken.Error()
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snapshot := displayData{
			deviceName:   data.deviceName,
			haveDevice:   data.haveDevice,
			jumpCount:    data.jumpCount,
			lastJumpTime: data.lastJumpTime,
		}
		data.mu.RUnlock()

		if err := updateStatus(dev, &snapshot); err != nil {
			log.Printf("display: error updating: %v", err)
		}
	}

	return nil
}

func newDrawer(img *image1bit.VerticalLSB) *font.Drawer {
	// Blank image
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
}

func updateStatus(dev *ssd1306.Dev, data *displayData) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	if !data.haveDevice {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Scanning..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(data.deviceName))

	drawer.Dot = fixed.P(0, 32)
	drawer.DrawBytes([]byte(fmt.Sprintf("Jumps: %d", data.jumpCount)))

	drawer.Dot = fixed.P(0, 45)
	if data.lastJumpTime.IsZero() {
		drawer.DrawBytes([]byte("Last: --"))
	} else {
		drawer.DrawBytes([]byte(fmt.Sprintf("Last: %.1fs ago", time.Since(data.lastJumpTime).Seconds())))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Gesture Jump"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("device"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
