package txtrecord

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// readableKeys maps well-known TXT keys (lowercase) to display labels
var readableKeys = map[string]string{
	// Identity & model
	"fn":          "Friendly Name",
	"md":          "Model",
	"model":       "Model",
	"ty":          "Device Type",
	"note":        "Location/Note",
	"product":     "Product Name",
	"name":        "Name",
	"dn":          "Display Name",
	"displayname": "Display Name",
	"id":          "Identifier",
	"uid":         "Unique ID",
	"deviceid":    "Device ID",
	"pi":          "Product ID",

	// Version & firmware
	"fw":      "Firmware Version",
	"fwv":     "Firmware Version",
	"fv":      "Firmware Version",
	"vs":      "Version",
	"ver":     "Version",
	"version": "Version",
	"vv":      "Version",
	"srcvers": "Source Version",
	"txtvers": "TXT Record Version",
	"ov":      "OS Version",
	"pv":      "Protocol Version",

	// Network & protocol
	"acl": "Access Control Level",
	"act": "Activity Status",
	"dk":  "Decryption Key",
	"et":  "Encryption Type",
	"pw":  "Password Required",
	"sf":  "Status Flags",
	"tp":  "Transport Protocol",
	"pk":  "Public Key",
	"ek":  "Encryption Key",

	// Printing
	"pdl":         "Page Description Languages",
	"rp":          "Resource Path",
	"qtotal":      "Queue Total",
	"priority":    "Priority",
	"adminurl":    "Admin URL",
	"usb_mfg":     "USB Manufacturer",
	"usb_mdl":     "USB Model",
	"color":       "Color Support",
	"duplex":      "Duplex Printing",
	"scan":        "Scanning Capable",
	"fax":         "Fax Capable",
	"copies":      "Copies Support",
	"collate":     "Collation Support",
	"bind":        "Binding Support",
	"punch":       "Hole Punch Support",
	"sort":        "Sorting Support",
	"staple":      "Stapling Support",
	"papercustom": "Custom Paper Support",
	"binary":      "Binary Data Support",
	"tbcp":        "TBCP Support",
	"transparent": "Transparent Data Support",
	"papermax":    "Max Paper Size",

	// AirPlay / RAOP
	"am":       "AirPlay Model",
	"ch":       "Audio Channels",
	"cn":       "Audio Codecs",
	"da":       "Device Announce",
	"sr":       "Sample Rate",
	"ss":       "Sample Size",
	"vn":       "Vendor",
	"ft":       "Features",
	"flags":    "Feature Flags",
	"features": "Supported Features",
	"at":       "Audio Types",

	// HomeKit
	"c#": "Configuration Number",
	"ff": "Feature Flags",
	"ci": "Category Identifier",
	"s#": "State Number",
	"sh": "Setup Hash",

	// File sharing
	"machine": "Machine Type",
	"sys":     "System",
	"wg":      "Workgroup",

	// Web
	"path": "URL Path",
	"u":    "URL",
}

// ReadableKey returns a display label for a TXT record key.
// Known abbreviations are looked up case-insensitively; anything else is
// title-cased with underscores and dashes turned into spaces.
func ReadableKey(key string) string {
	if label, ok := readableKeys[strings.ToLower(key)]; ok {
		return label
	}
	return titleCase(key)
}

func titleCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(words) == 0 {
		return key
	}
	// Casers carry state, so one is built per call
	caser := cases.Title(language.Und, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
