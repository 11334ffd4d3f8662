package platform

import (
	"context"
	"testing"
)

func TestNewProvider_NoBackend(t *testing.T) {
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider(Options{})
	if err == nil {
		t.Fatal("expected error without a registered backend")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_PassesOptions(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	var got Options
	NewProviderFunc = func(opts Options) (*Provider, error) {
		got = opts
		return &Provider{}, nil
	}
	if _, err := NewProvider(Options{Serial: "emulator-5554"}); err != nil {
		t.Fatal(err)
	}
	if got.Serial != "emulator-5554" {
		t.Errorf("serial not passed through: %+v", got)
	}
}

func TestListDevices_NoBackend(t *testing.T) {
	orig := ListDevicesFunc
	ListDevicesFunc = nil
	defer func() { ListDevicesFunc = orig }()

	if _, err := ListDevices(context.Background(), Options{}); err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestDeviceInfo_Ready(t *testing.T) {
	if !(DeviceInfo{State: "device"}).Ready() {
		t.Error("device state should be ready")
	}
	if (DeviceInfo{State: "unauthorized"}).Ready() {
		t.Error("unauthorized should not be ready")
	}
}
