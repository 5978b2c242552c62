package classify

import "strings"

// Icon is a presentation-neutral device kind tag
type Icon string

const (
	IconPrinter Icon = "printer"
	IconTV      Icon = "tv"
	IconSpeaker Icon = "speaker"
	IconDesktop Icon = "desktop"
	IconDisk    Icon = "disk"
	IconRouter  Icon = "router"
	IconServer  Icon = "server"
	IconCamera  Icon = "camera"
	IconHome    Icon = "home"
	IconUnknown Icon = "unknown"
)

// Icons lists every icon tag
var Icons = []Icon{
	IconPrinter, IconTV, IconSpeaker, IconDesktop, IconDisk,
	IconRouter, IconServer, IconCamera, IconHome, IconUnknown,
}

// String returns the tag
func (i Icon) String() string {
	if i == "" {
		return string(IconUnknown)
	}
	return string(i)
}

// GuessIcon infers an icon from the service category, vendor, advertised name
// and model. It is used where no rule pins the icon down directly.
func GuessIcon(category, vendor, name, model string) Icon {
	category = strings.ToLower(category)
	vendor = strings.ToLower(vendor)
	name = strings.ToLower(name)
	model = strings.ToLower(model)

	switch {
	case containsAny(category, printerCategories):
		return IconPrinter
	case containsAny(category, streamingCategories):
		if containsAny(name, tvHints) || containsAny(model, tvHints) {
			return IconTV
		}
		return IconSpeaker
	case containsAny(category, workstationCategories):
		return IconDesktop
	case containsAny(category, fileSharingCategories):
		return IconDisk
	case containsAny(category, remoteShellCategories):
		return IconServer
	case containsAny(category, screenSharingCategories):
		return IconDesktop
	case containsAny(category, webCategories):
		if containsAny(name, cameraNameHints) || containsAny(vendor, cameraIconVendors) {
			return IconCamera
		}
		if containsAny(vendor, storageVendorHints) {
			return IconDisk
		}
		return IconServer
	case containsAny(category, homeCategories):
		return IconHome
	case containsAny(category, mediaServerCategories):
		return IconTV
	case containsAny(vendor, desktopVendorHints):
		return IconDesktop
	case containsAny(vendor, networkingVendorHints):
		return IconRouter
	case containsAny(vendor, storageVendorHints):
		return IconDisk
	}
	return IconUnknown
}
