package analytics

import (
	"regexp"
	"strings"

	"github.com/ettle/strcase"
)

// Device labels produced by user-agent detection.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

var (
	mobileUA = regexp.MustCompile(`(?i)mobile|android|iphone|ipod`)
	tabletUA = regexp.MustCompile(`(?i)tablet|ipad`)
)

// DeviceCount is one slice of the device breakdown chart.
type DeviceCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DetectDevice classifies a user agent with coarse substring heuristics.
func DetectDevice(userAgent string) string {
	switch {
	case mobileUA.MatchString(userAgent):
		return DeviceMobile
	case tabletUA.MatchString(userAgent):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// DeviceCounts prefers session-level device data wholesale: page-view device
// fields are consulted only when no session contributed anything. Labels are
// title-cased so `mobile` and `Mobile` group together.
func DeviceCounts(sessions []Session, pageViews []PageView) []DeviceCount {
	counts := map[string]int{}
	var order []string
	add := func(label string) {
		if _, ok := counts[label]; !ok {
			order = append(order, label)
		}
		counts[label]++
	}

	for _, s := range sessions {
		device := s.Device
		if device == "" {
			device = DetectDevice(s.UserAgent)
		}
		add(deviceLabel(device))
	}
	if len(counts) == 0 {
		for _, pv := range pageViews {
			if pv.Device != "" {
				add(deviceLabel(pv.Device))
			}
		}
	}

	if len(order) == 0 {
		return []DeviceCount{{Label: PlaceholderCategory, Count: 1}}
	}
	out := make([]DeviceCount, 0, len(order))
	for _, label := range order {
		out = append(out, DeviceCount{Label: label, Count: counts[label]})
	}
	return out
}

func deviceLabel(device string) string {
	return strcase.ToCase(strings.ToLower(device), strcase.TitleCase, 0)
}
