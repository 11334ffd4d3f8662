package platform

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Provider bundles the capability backends for one device session.
type Provider struct {
	Snapshotter Snapshotter
	Gesturer    Gesturer
	Device      Device
	Apps        AppManager
}

// Options selects and configures the device backend.
type Options struct {
	Serial  string // Device serial (empty = the only attached device)
	ADBPath string // Path to the adb binary (empty = look up in PATH)
	Log     zerolog.Logger
}

// ErrUnsupported is returned when no device backend is registered.
var ErrUnsupported = errors.New("no device backend registered; build with the adb backend")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/adb/init.go for the adb registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider for the configured device.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}

// DeviceInfo describes one attached device.
type DeviceInfo struct {
	Serial string `yaml:"serial"          json:"serial"`
	State  string `yaml:"state"           json:"state"` // device, offline, unauthorized, ...
	Model  string `yaml:"model,omitempty" json:"model,omitempty"`
}

// Ready reports whether the device accepts commands.
func (d DeviceInfo) Ready() bool { return d.State == "device" }

// ListDevicesFunc is set by backend packages via init().
var ListDevicesFunc func(ctx context.Context, opts Options) ([]DeviceInfo, error)

// ListDevices returns the devices visible to the backend. opts.Serial is
// ignored.
func ListDevices(ctx context.Context, opts Options) ([]DeviceInfo, error) {
	if ListDevicesFunc == nil {
		return nil, ErrUnsupported
	}
	return ListDevicesFunc(ctx, opts)
}
