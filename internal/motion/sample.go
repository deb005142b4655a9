package motion

// Sample represents a single raw accelerometer reading.
type Sample struct {
	Ax float64 `json:"ax"`
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
}

// Source is anything that can provide accelerometer samples over time.
// Real MPU9250 source, mock source for broker-less development, replay
// sources in tests.
type Source interface {
	Next() (Sample, error)
}
