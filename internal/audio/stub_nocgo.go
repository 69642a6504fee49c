//go:build !cgo

package audio

import "fmt"

// Device platforms link against system audio libraries. Builds without cgo
// only get the silent platform.
const devicesAvailable = false

func newDevicePlatform(kind string, loader ClipLoader, sampleRate int) (Platform, error) {
	return nil, fmt.Errorf(`%w: the %s backend requires cgo

Rebuild with CGO_ENABLED=1 and a C toolchain installed:
  - Linux: sudo apt-get install build-essential libasound2-dev
  - macOS: xcode-select --install
  - Windows: install MinGW

or set "audio_backend": "silent" in the config`, ErrPlatformNotAvailable, kind)
}
