package audio

import (
	"errors"
	"testing"
)

func TestPlatformFactory_CreatePlatform(t *testing.T) {
	testCases := []struct {
		name     string
		devices  bool
		kind     string
		wantName string
		wantErr  error
	}{
		{"silent", false, "silent", "silent", nil},
		{"auto without devices", false, "auto", "silent", nil},
		{"empty defaults to auto", false, "", "silent", nil},
		{"malgo without devices", false, "malgo", "", ErrPlatformNotAvailable},
		{"oto without devices", false, "oto", "", ErrPlatformNotAvailable},
		{"invalid", true, "pulseaudio", "", ErrInvalidPlatform},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			factory := NewPlatformFactoryWithDevices(&fakeLoader{}, 0, tc.devices)
			platform, err := factory.CreatePlatform(tc.kind)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if platform.Name() != tc.wantName {
				t.Errorf("expected %s platform, got %s", tc.wantName, platform.Name())
			}
		})
	}
}

func TestPlatformFactory_IsValidPlatform(t *testing.T) {
	factory := NewPlatformFactory(&fakeLoader{}, DefaultSampleRate)

	for _, kind := range []string{"", "auto", "malgo", "beep", "oto", "silent"} {
		if !factory.IsValidPlatform(kind) {
			t.Errorf("expected %q to be valid", kind)
		}
	}
	for _, kind := range []string{"system_command", "AUTO", "alsa"} {
		if factory.IsValidPlatform(kind) {
			t.Errorf("expected %q to be invalid", kind)
		}
	}

	if len(factory.SupportedPlatforms()) != 5 {
		t.Errorf("expected 5 platforms, got %v", factory.SupportedPlatforms())
	}
}
