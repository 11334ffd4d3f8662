package adb

import (
	"bufio"
	"context"
	"strings"

	"github.com/tas33n/DroidWright/internal/platform"
)

// Devices lists the devices the adb server knows about. The listing is
// never scoped to the client's serial.
func (c *Client) Devices(ctx context.Context) ([]platform.DeviceInfo, error) {
	unscoped := *c
	unscoped.serial = ""
	out, err := unscoped.adb(ctx, "devices", "-l")
	if err != nil {
		return nil, err
	}
	return ParseDevices(string(out)), nil
}

// ParseDevices parses `adb devices -l` output.
func ParseDevices(out string) []platform.DeviceInfo {
	var devices []platform.DeviceInfo
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "*") || fields[0] == "List" {
			continue
		}
		d := platform.DeviceInfo{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			if m, ok := strings.CutPrefix(f, "model:"); ok {
				d.Model = m
			}
		}
		devices = append(devices, d)
	}
	return devices
}
