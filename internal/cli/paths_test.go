package cli

import (
	"path/filepath"
	"testing"
)

func TestXDGDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		env  string
		set  string
		fn   func() (string, error)
		want string
	}{
		{"cache default", "XDG_CACHE_HOME", "", cacheDir, filepath.Join(home, ".cache", appName)},
		{"cache xdg", "XDG_CACHE_HOME", "/srv/cache", cacheDir, filepath.Join("/srv/cache", appName)},
		{"config default", "XDG_CONFIG_HOME", "", configDir, filepath.Join(home, ".config", appName)},
		{"config xdg", "XDG_CONFIG_HOME", "/etc/xdg", configDir, filepath.Join("/etc/xdg", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.set)
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
