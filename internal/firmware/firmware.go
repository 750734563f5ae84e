// Package firmware selects which Wi-Fi chipset firmware the kernel
// loads, by pointing the cypress firmware symlinks at the requested
// build. A change only takes effect after reboot.
package firmware

import (
	"os"
	"path/filepath"

	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
)

// Selection is the firmware section of the settings document.
type Selection struct {
	BRCM43455 string `yaml:"brcm43455"`
	BRCM43430 string `yaml:"brcm43430"`
}

// link is one symlink the kernel resolves at firmware load time.
type link struct {
	target     string
	candidates map[string]string
}

var matrix = map[string][]link{
	"brcm43455": {
		{
			target: "cyfmac43455-sdio.bin",
			candidates: map[string]string{
				"raspios":                        "cyfmac43455-sdio.bin_raspios",
				"supports-19_2021-11-30":         "brcmfmac43455-sdio.bin_2021-11-30_minimal",
				"supports-24_2021-10-05_noap+sta": "brcmfmac43455-sdio.bin_2021-10-05_3rd-trial-minimal",
				"supports-32_2015-03-01_unreliable": "brcmfmac43455-sdio.bin_2015-03-01_7.45.18.0_ub19.10.1",
			},
		},
		{
			target: "cyfmac43455-sdio.clm_blob",
			candidates: map[string]string{
				"raspios":                        "cyfmac43455-sdio.clm_blob_raspios",
				"supports-19_2021-11-30":         "brcmfmac43455-sdio.clm_blob_2021-11-17_rpi",
				"supports-24_2021-10-05_noap+sta": "brcmfmac43455-sdio.clm_blob_2021-11-17_rpi",
				"supports-32_2015-03-01_unreliable": "brcmfmac43455-sdio.clm_blob_2018-02-26_rpi",
			},
		},
	},
	"brcm43430": {
		{
			target: "cyfmac43430-sdio.bin",
			candidates: map[string]string{
				"raspios":                "cyfmac43430-sdio.bin_raspios",
				"supports-30_2018-09-28": "brcmfmac43430-sdio.bin_2018-09-11_7.45.98.65",
			},
		},
		{
			target: "cyfmac43430-sdio.clm_blob",
			candidates: map[string]string{
				"raspios":                "cyfmac43430-sdio.clm_blob_raspios",
				"supports-30_2018-09-28": "brcmfmac43430-sdio.clm_blob_2018-09-11_7.45.98.65",
			},
		},
	},
}

// Validate checks each requested chipset firmware name.
func Validate(sel Selection) checks.CheckResult {
	if sel.BRCM43455 != "" {
		if check := checks.IsValidFirmwareFor("brcm43455", sel.BRCM43455); !check.OK() {
			return check
		}
	}
	if sel.BRCM43430 != "" {
		if check := checks.IsValidFirmwareFor("brcm43430", sel.BRCM43430); !check.OK() {
			return check
		}
	}
	return checks.Pass()
}

// Apply repoints the firmware symlinks and reports whether anything
// changed. The selection must already have passed Validate. A true
// result means the caller should request a reboot.
func Apply(sel Selection) (bool, error) {
	changed := false
	for chipset, firmware := range map[string]string{
		"brcm43455": sel.BRCM43455,
		"brcm43430": sel.BRCM43430,
	} {
		if firmware == "" {
			continue
		}
		for _, l := range matrix[chipset] {
			linkChanged, err := ensureSymlink(
				filepath.Join(brand.Path(brand.FirmwareDir), l.target),
				filepath.Join(brand.Path(brand.FirmwareDir), l.candidates[firmware]),
			)
			if err != nil {
				return changed, err
			}
			changed = changed || linkChanged
		}
		logging.WithComponent("firmware").Info("firmware selected", "chipset", chipset, "firmware", firmware)
	}
	return changed, nil
}

// ensureSymlink points path at target, reporting whether it had to
// change anything.
func ensureSymlink(path, target string) (bool, error) {
	if current, err := os.Readlink(path); err == nil && current == target {
		return false, nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.Symlink(target, path); err != nil {
		return false, err
	}
	return true, nil
}
