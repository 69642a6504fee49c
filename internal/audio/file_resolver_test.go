package audio

import (
	"testing"

	"github.com/spf13/afero"
)

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte("data"), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", p, err)
		}
	}
}

func TestFileResolver_Resolve(t *testing.T) {
	testCases := []struct {
		name       string
		files      []string
		extensions []string
		path       string
		expected   string
		wantErr    bool
	}{
		{
			name:       "exact path wins",
			files:      []string{"/pack/beep.mp3"},
			extensions: DefaultExtensions,
			path:       "/pack/beep.mp3",
			expected:   "/pack/beep.mp3",
		},
		{
			name:       "finds wav before mp3 when both exist",
			files:      []string{"/pack/beep.wav", "/pack/beep.mp3"},
			extensions: []string{"wav", "mp3", "ogg"},
			path:       "/pack/beep",
			expected:   "/pack/beep.wav",
		},
		{
			name:       "falls through to later extensions",
			files:      []string{"/pack/boom.ogg"},
			extensions: []string{"wav", "mp3", "ogg"},
			path:       "/pack/boom",
			expected:   "/pack/boom.ogg",
		},
		{
			name:       "custom extension order",
			files:      []string{"/pack/theme.wav", "/pack/theme.ogg"},
			extensions: []string{".ogg", ".wav"},
			path:       "/pack/theme",
			expected:   "/pack/theme.ogg",
		},
		{
			name:       "explicit extension is not rewritten",
			files:      []string{"/pack/beep.wav"},
			extensions: DefaultExtensions,
			path:       "/pack/beep.mp3",
			wantErr:    true,
		},
		{
			name:       "nothing found",
			extensions: DefaultExtensions,
			path:       "/pack/missing",
			wantErr:    true,
		},
		{
			name:       "empty path",
			extensions: DefaultExtensions,
			path:       "",
			wantErr:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeFiles(t, fs, tc.files...)

			result, err := NewFileResolver(fs, tc.extensions).Resolve(tc.path)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error, got %s", result)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestNewFileResolver(t *testing.T) {
	resolver := NewFileResolver(afero.NewMemMapFs(), []string{"wav", ".mp3"})

	got := resolver.Extensions()
	if len(got) != 2 || got[0] != ".wav" || got[1] != ".mp3" {
		t.Errorf("expected normalized extensions, got %v", got)
	}

	if len(NewFileResolver(afero.NewMemMapFs(), nil).Extensions()) != 0 {
		t.Error("expected no extensions")
	}
}
