package services

import (
	"net/url"
	"strings"
)

// Platform is the closed set of ATS variants the engine knows how to drive.
type Platform string

const (
	PlatformAshby      Platform = "ashby"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkable   Platform = "workable"
	PlatformGeneric    Platform = "generic"
)

// vendorDomains maps URL substrings to platforms. Checked before markup
// fingerprints because hosted ATS URLs are the cheapest reliable signal.
var vendorDomains = []struct {
	fragment string
	platform Platform
}{
	{"ashbyhq.com", PlatformAshby},
	{"jobs.ashby", PlatformAshby},
	{"greenhouse.io", PlatformGreenhouse},
	{"gh_jid=", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"workable.com", PlatformWorkable},
	{"apply.workable", PlatformWorkable},
}

// markupFingerprints are vendor artifacts that survive embedding: script
// hosts, CSS prefixes, data attributes.
var markupFingerprints = []struct {
	fragment string
	platform Platform
}{
	{"_ashby_jid", PlatformAshby},
	{"ashby_embed", PlatformAshby},
	{"ashbyhq", PlatformAshby},
	{"grnhse_app", PlatformGreenhouse},
	{"boards.greenhouse", PlatformGreenhouse},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever-application", PlatformLever},
	{"jobs.lever.co", PlatformLever},
	{"whr-embed", PlatformWorkable},
	{"workablecdn", PlatformWorkable},
}

// DetectPlatform classifies a loaded page by URL first, then by rendered
// markup. Unmatched pages return the generic tag; this never fails, so the
// pipeline always has a filler strategy to run.
func DetectPlatform(pageURL, body string) Platform {
	if parsed, err := url.Parse(pageURL); err == nil {
		haystack := strings.ToLower(parsed.Host + parsed.Path + "?" + parsed.RawQuery)
		for _, candidate := range vendorDomains {
			if strings.Contains(haystack, candidate.fragment) {
				return candidate.platform
			}
		}
	}

	lowerBody := strings.ToLower(body)
	for _, candidate := range markupFingerprints {
		if strings.Contains(lowerBody, candidate.fragment) {
			return candidate.platform
		}
	}

	return PlatformGeneric
}
