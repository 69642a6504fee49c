//go:build cgo

package audio

const devicesAvailable = true

func newDevicePlatform(kind string, loader ClipLoader, sampleRate int) (Platform, error) {
	switch kind {
	case "malgo":
		return NewMalgoPlatform(loader, sampleRate), nil
	case "beep":
		return NewBeepPlatform(loader, sampleRate), nil
	case "oto":
		return NewOtoPlatform(loader, sampleRate), nil
	}
	return nil, ErrInvalidPlatform
}
