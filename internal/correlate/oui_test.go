package correlate

import "testing"

func TestNormalizeHardwareAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3c:52:82:aa:bb:cc", "3C5282AABBCC"},
		{"3C-52-82-AA-BB-CC", "3C5282AABBCC"},
		{"0:11:22:3:44:5", "001122034405"},
		{"b827.eb01.0203", "B827EB010203"},
		{"  b8:27:eb:1:2:3 ", "B827EB010203"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeHardwareAddress(tt.in); got != tt.want {
			t.Errorf("NormalizeHardwareAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHardwareAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3C-52-82-AA-BB-CC", "3c:52:82:aa:bb:cc"},
		{"0:11:22:3:44:5", "00:11:22:03:44:05"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		if got := FormatHardwareAddress(tt.in); got != tt.want {
			t.Errorf("FormatHardwareAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVendorFor(t *testing.T) {
	tests := []struct {
		hw   string
		want string
	}{
		{"b8:27:eb:12:34:56", "Raspberry Pi Foundation"},
		{"B8-27-EB-12-34-56", "Raspberry Pi Foundation"},
		{"0:16:cb:1:2:3", "Apple"},
		{"00:0C:29:00:00:00", "VMware"},
		{"18:b1:69:aa:bb:cc", "Synology"},
		{"f4:f5:e8:00:00:00", "Ubiquiti"},
		{"00:00:5e:00:00:00", ""},
		{"b8:27", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := VendorFor(tt.hw); got != tt.want {
			t.Errorf("VendorFor(%q) = %q, want %q", tt.hw, got, tt.want)
		}
	}
}

func TestOUI(t *testing.T) {
	if got := OUI("3c:52:82:aa:bb:cc"); got != "3C5282" {
		t.Errorf("OUI() = %q, want 3C5282", got)
	}
	if got := OUI("3c:52"); got != "" {
		t.Errorf("OUI(short) = %q, want empty", got)
	}
}
