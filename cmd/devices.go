package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/logging"
	"github.com/tas33n/DroidWright/internal/platform"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached devices",
	Long:  "List the devices adb can see with their state. Only devices in the \"device\" state accept commands.",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.Flags().Bool("ready", false, "Only list devices that accept commands")
}

// listDevices is replaced in tests.
var listDevices = platform.ListDevices

func runDevices(cmd *cobra.Command, args []string) error {
	ready, _ := cmd.Flags().GetBool("ready")
	devices, err := listDevices(cmd.Context(), platform.Options{
		ADBPath: appConfig.ADB.Path,
		Log:     logging.Component(appLog, "adb"),
	})
	if err != nil {
		return err
	}
	out := []platform.DeviceInfo{}
	for _, d := range devices {
		if !ready || d.Ready() {
			out = append(out, d)
		}
	}
	return printResult(out)
}
