// Package device classifies the browser environment reported by the
// dashboard page and derives a soft fingerprint for attendance mutations.
//
// Classification is a UX heuristic only. Anything the page reports can be
// spoofed, so desktop-only enforcement must be repeated upstream.
package device

import (
	"fmt"
	"regexp"
	"time"
)

// Signals is what the page reports about its environment on mount.
type Signals struct {
	UserAgent      string `json:"user_agent"`
	Language       string `json:"language"`
	Platform       string `json:"platform"`
	ViewportWidth  int    `json:"viewport_width" binding:"gte=0"`
	ViewportHeight int    `json:"viewport_height" binding:"gte=0"`
	ScreenWidth    int    `json:"screen_width" binding:"gte=0"`
	ScreenHeight   int    `json:"screen_height" binding:"gte=0"`
	ColorDepth     int    `json:"color_depth"`
	TimezoneOffset *int   `json:"timezone_offset"` // minutes, as Date#getTimezoneOffset; nil when unreported
	TouchPoints    int    `json:"touch_points"`
	HasTouchEvents bool   `json:"has_touch_events"`
	HasOrientation bool   `json:"has_orientation"`
	CookiesEnabled bool   `json:"cookies_enabled"`
	DoNotTrack     string `json:"do_not_track"`
	CanvasData     string `json:"canvas_data"` // empty when canvas is blocked
}

const (
	userAgentWeight   = 40
	viewportWeight    = 30
	touchWeight       = 20
	orientationWeight = 10

	mobileThreshold = 50

	maxMobileWidth  = 768
	maxMobileHeight = 1024

	// UTC-12:00 through UTC+14:00.
	minOffsetMinutes = -14 * 60
	maxOffsetMinutes = 12 * 60
)

var mobileUserAgent = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini|mobile`)

// Classification is the outcome of Classify.
type Classification struct {
	IsMobile bool `json:"is_mobile"`
	Score    int  `json:"score"`
}

// Classify scores the signals and reports mobile when the score reaches 50.
func Classify(s Signals) Classification {
	score := Score(s)
	return Classification{IsMobile: score >= mobileThreshold, Score: score}
}

// Score returns the weighted mobile score in [0,100].
func Score(s Signals) int {
	score := 0
	if mobileUserAgent.MatchString(s.UserAgent) {
		score += userAgentWeight
	}
	if smallViewport(s) {
		score += viewportWeight
	}
	if s.TouchPoints > 0 || s.HasTouchEvents {
		score += touchWeight
	}
	if s.HasOrientation {
		score += orientationWeight
	}
	return score
}

// smallViewport ignores dimensions the page did not report.
func smallViewport(s Signals) bool {
	if s.ViewportWidth > 0 && s.ViewportWidth <= maxMobileWidth {
		return true
	}
	return s.ViewportHeight > 0 && s.ViewportHeight <= maxMobileHeight
}

// Location is the page's fixed UTC offset. It reports false when the page sent
// no offset or one outside the range of real time zones.
func (s Signals) Location() (*time.Location, bool) {
	if s.TimezoneOffset == nil {
		return nil, false
	}
	offset := *s.TimezoneOffset
	if offset < minOffsetMinutes || offset > maxOffsetMinutes {
		return nil, false
	}

	// getTimezoneOffset is UTC minus local, so UTC+05:30 arrives as -330.
	east := -offset
	sign := "+"
	if east < 0 {
		sign, east = "-", -east
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, east/60, east%60)
	return time.FixedZone(name, -offset*60), true
}
