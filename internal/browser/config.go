// Package browser implements the browser session facade: a narrow
// capability surface over a real CDP-speaking Chromium process, driven via
// github.com/go-rod/rod.
package browser

import "time"

// Profile describes how a browser session should be launched: headless
// flag, window size, storage-state path, allowed domains, proxy.
type Profile struct {
	Headless         bool
	ViewportWidth    int
	ViewportHeight   int
	DeviceScaleFactor float64
	StorageStatePath string
	AllowedDomains   []string
	ProxyURL         string

	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
}

// DefaultProfile returns reasonable defaults for a headless run.
func DefaultProfile() Profile {
	return Profile{
		Headless:          true,
		ViewportWidth:     1280,
		ViewportHeight:    800,
		DeviceScaleFactor: 1,
		NavigationTimeout: 30 * time.Second,
		ActionTimeout:     10 * time.Second,
	}
}

func (p Profile) navigationTimeout() time.Duration {
	if p.NavigationTimeout > 0 {
		return p.NavigationTimeout
	}
	return 30 * time.Second
}
