package classify

import "strings"

// Service category fragments, matched against the lower-cased category
var (
	printerCategories       = []string{"_ipp._tcp", "_ipps._tcp", "_printer._tcp", "_pdl-datastream._tcp"}
	streamingCategories     = []string{"_airplay._tcp", "_raop._tcp"}
	workstationCategories   = []string{"_workstation._tcp"}
	fileSharingCategories   = []string{"_smb._tcp", "_afpovertcp._tcp", "_nfs._tcp"}
	remoteShellCategories   = []string{"_ssh._tcp", "_sftp-ssh._tcp"}
	screenSharingCategories = []string{"_rfb._tcp"}
	webCategories           = []string{"_http._tcp", "_https._tcp"}
	homeCategories          = []string{"_hap._tcp"}
	mediaServerCategories   = []string{"_plex._tcp", "_plexmediasvr._tcp"}
)

// Keyword hints, matched as lower-case substrings
var (
	tvHints               = []string{"tv"}
	tvCategoryHints       = []string{"appletv"}
	desktopNameHints      = []string{"mac"}
	desktopVendorHints    = []string{"apple"}
	printerVendorHints    = []string{"hp", "hewlett", "canon", "brother", "epson"}
	storageVendorHints    = []string{"synology", "qnap", "western digital"}
	cameraNameHints       = []string{"cam"}
	cameraVendorHints     = []string{"hikvision", "arlo", "wyze", "nest"}
	cameraIconVendors     = []string{"hikvision", "arlo", "wyze"}
	routerNameHints       = []string{"router", "gateway"}
	networkingVendorHints = []string{"cisco", "ubiquiti", "mikrotik", "tp-link", "netgear"}
)

// vendorLabels is the display spelling of hints found in names or host names
var vendorLabels = map[string]string{
	"cisco":           "Cisco",
	"ubiquiti":        "Ubiquiti",
	"mikrotik":        "MikroTik",
	"tp-link":         "TP-Link",
	"netgear":         "Netgear",
	"synology":        "Synology",
	"qnap":            "QNAP",
	"western digital": "Western Digital",
	"hikvision":       "Hikvision",
	"arlo":            "Arlo",
	"wyze":            "Wyze",
	"nest":            "Nest",
}

func containsAny(s string, hints []string) bool {
	return matchHint(s, hints) != ""
}

// matchHint returns the first hint contained in s
func matchHint(s string, hints []string) string {
	if s == "" {
		return ""
	}
	for _, h := range hints {
		if strings.Contains(s, h) {
			return h
		}
	}
	return ""
}

// labelFor returns the display spelling of a hint
func labelFor(hint string) string {
	if label, ok := vendorLabels[hint]; ok {
		return label
	}
	return hint
}
