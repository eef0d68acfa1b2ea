package device

import (
	"io/fs"
	"os"
	"path/filepath"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/juju/errors"
)

const InputDir = "/dev/input"

// FindInputDevices opens the character devices in dir whose name passes
// wanted. Devices that are not evdev nodes or not wanted are closed again.
func FindInputDevices(dir string, wanted func(name string) bool) ([]*evdev.InputDevice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Annotatef(err, "list input devices in %s", dir)
	}

	var devices []*evdev.InputDevice
	for _, e := range entries {
		if e.Type()&fs.ModeCharDevice == 0 {
			continue
		}
		path := filepath.Join(dir, e.Name())
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		if !wanted(dev.Name) {
			dev.File.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, errors.NotFoundf("input devices in %s", dir)
	}
	return devices, nil
}

// OpenInputDevice opens one device by path, without the name check.
func OpenInputDevice(path string) (*evdev.InputDevice, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "open input device %s", path)
	}
	return dev, nil
}
