package txtrecord

import "strings"

// Category groups TXT record keys by what they describe
type Category int

const (
	CategoryIdentity Category = iota
	CategoryCapabilities
	CategoryNetworkSecurity
	CategoryVersion
	CategoryStatus
	CategoryConfiguration
	CategoryOther
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryIdentity,
	CategoryCapabilities,
	CategoryNetworkSecurity,
	CategoryVersion,
	CategoryStatus,
	CategoryConfiguration,
	CategoryOther,
}

// String returns the display name of the category
func (c Category) String() string {
	switch c {
	case CategoryIdentity:
		return "Identity"
	case CategoryCapabilities:
		return "Capabilities"
	case CategoryNetworkSecurity:
		return "Network & Security"
	case CategoryVersion:
		return "Version & Firmware"
	case CategoryStatus:
		return "Status"
	case CategoryConfiguration:
		return "Configuration"
	default:
		return "Other"
	}
}

// MarshalText lets categories appear by name in JSON and YAML output
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category display name. Unknown names become
// CategoryOther.
func (c *Category) UnmarshalText(text []byte) error {
	name := string(text)
	for _, candidate := range Categories {
		if candidate.String() == name {
			*c = candidate
			return nil
		}
	}
	*c = CategoryOther
	return nil
}

var keyCategories = buildKeyCategories(map[Category][]string{
	CategoryIdentity: {
		"fn", "name", "dn", "displayname", "md", "model", "ty", "product",
		"note", "id", "uid", "deviceid", "am", "vn", "usb_mfg", "usb_mdl", "pi",
	},
	CategoryVersion: {
		"fw", "fwv", "fv", "version", "vs", "vv", "ver", "srcvers", "pv", "ov", "txtvers",
	},
	CategoryNetworkSecurity: {
		"acl", "pw", "dk", "et", "tp", "pk", "sh", "ek",
	},
	CategoryStatus: {
		"act", "sf", "flags", "ff", "c#", "s#",
	},
	CategoryCapabilities: {
		"pdl", "color", "duplex", "scan", "fax", "copies", "papermax", "ch", "cn",
		"sr", "ss", "features", "ft", "ci", "at", "collate", "bind", "punch",
		"sort", "staple", "papercustom", "binary", "tbcp", "transparent",
	},
	CategoryConfiguration: {
		"rp", "path", "u", "adminurl", "qtotal", "priority", "machine", "sys", "wg", "da",
	},
})

func buildKeyCategories(groups map[Category][]string) map[string]Category {
	out := make(map[string]Category)
	for category, keys := range groups {
		for _, key := range keys {
			out[key] = category
		}
	}
	return out
}

// Categorize returns the category of a TXT record key.
// Lookup is case-insensitive; unknown keys are CategoryOther.
func Categorize(key string) Category {
	if category, ok := keyCategories[strings.ToLower(key)]; ok {
		return category
	}
	return CategoryOther
}
