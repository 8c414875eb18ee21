package drm

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCard lays out <root>/cardN/device with the given sysfs attributes.
func writeCard(t *testing.T, root, name string, attrs map[string]string) {
	t.Helper()
	device := filepath.Join(root, name, "device")
	if err := os.MkdirAll(device, 0755); err != nil {
		t.Fatal(err)
	}
	for attr, value := range attrs {
		if err := os.WriteFile(filepath.Join(device, attr), []byte(value+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	writeCard(t, root, "card1", map[string]string{"vendor": "0x10de"})
	writeCard(t, root, "card0", map[string]string{"vendor": "0x1002"})
	// Connector nodes must be ignored.
	if err := os.MkdirAll(filepath.Join(root, "card0-HDMI-A-1"), 0755); err != nil {
		t.Fatal(err)
	}
	// Non-card entries too.
	if err := os.MkdirAll(filepath.Join(root, "renderD128"), 0755); err != nil {
		t.Fatal(err)
	}

	cards, err := Scan(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[0].Index != 0 || cards[0].Vendor != VendorAMD {
		t.Errorf("cards[0] = %+v, want index 0 vendor amd", cards[0])
	}
	if cards[1].Index != 1 || cards[1].Vendor != VendorNVIDIA {
		t.Errorf("cards[1] = %+v, want index 1 vendor nvidia", cards[1])
	}
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeCard(t, root, "card0", map[string]string{"vendor": "0x1002"})

	card, err := Select(root, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Name != "card0" {
		t.Errorf("Name = %q, want card0", card.Name)
	}

	if _, err := Select(root, 3); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestVendorMapping(t *testing.T) {
	t.Parallel()
	cases := map[string]Vendor{
		"0x10de": VendorNVIDIA,
		"0x1002": VendorAMD,
		"0x8086": VendorIntel,
		"0x1af4": VendorUnknown,
	}
	for id, want := range cases {
		root := t.TempDir()
		writeCard(t, root, "card0", map[string]string{"vendor": id})
		cards, err := Scan(root)
		if err != nil {
			t.Fatal(err)
		}
		if cards[0].Vendor != want {
			t.Errorf("vendor %s = %q, want %q", id, cards[0].Vendor, want)
		}
	}
}

func TestModel(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeCard(t, root, "card0", map[string]string{
		"vendor":       "0x1002",
		"product_name": "Radeon RX 7800 XT",
		"device":       "0x747e",
	})
	writeCard(t, root, "card1", map[string]string{
		"vendor": "0x10de",
		"device": "0x2684",
	})

	cards, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := cards[0].Model(); got != "Radeon RX 7800 XT" {
		t.Errorf("Model = %q, want product_name value", got)
	}
	if got := cards[1].Model(); got != "0x2684" {
		t.Errorf("Model = %q, want device ID fallback", got)
	}
}

func TestPoweredOn(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeCard(t, root, "card0", map[string]string{"vendor": "0x10de", "power_state": "D3cold"})
	writeCard(t, root, "card1", map[string]string{"vendor": "0x10de", "power_state": "D0"})
	writeCard(t, root, "card2", map[string]string{"vendor": "0x1002"})

	cards, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if cards[0].PoweredOn() {
		t.Error("D3cold card should report powered off")
	}
	if !cards[1].PoweredOn() {
		t.Error("D0 card should report powered on")
	}
	if !cards[2].PoweredOn() {
		t.Error("card without power_state should report powered on")
	}
}
