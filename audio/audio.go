// Package audio abstracts microphone capture. PulseAudio backs the
// linux build, miniaudio (malgo) everything else.
package audio

import "strings"

// DataCallback receives raw little-endian 16-bit mono PCM.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

var btKeywords = []string{
	"airpods", "galaxy buds", "pixel buds", "jabra", "bose",
	"sony wh-", "sony wf-", "bluetooth", " bt ", " bt)",
}

// IsBluetooth guesses whether a device is a Bluetooth headset, which
// usually means a low-quality telephony capture profile.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
