package notify

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// LED is the steady connection indicator on a GPIO pin.
// periph host must be initialized before construction (the sensor init
// does that).
type LED struct {
	pin gpio.PinIO
}

func NewLED(pinName string) (*LED, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("indicator pin %q not found", pinName)
	}
	return &LED{pin: pin}, nil
}

func (l *LED) On() {
	if err := l.pin.Out(gpio.High); err != nil {
		log.Printf("indicator: %v", err)
	}
}

func (l *LED) Off() {
	if err := l.pin.Out(gpio.Low); err != nil {
		log.Printf("indicator: %v", err)
	}
}

// NopIndicator is used on headless setups without an LED wired up.
type NopIndicator struct{}

func (NopIndicator) On()  {}
func (NopIndicator) Off() {}
