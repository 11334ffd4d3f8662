package adb

import (
	"context"

	"github.com/tas33n/DroidWright/internal/platform"
)

func init() {
	platform.NewProviderFunc = func(opts platform.Options) (*platform.Provider, error) {
		return New(opts).Provider(), nil
	}
	platform.ListDevicesFunc = func(ctx context.Context, opts platform.Options) ([]platform.DeviceInfo, error) {
		return New(opts).Devices(ctx)
	}
}
