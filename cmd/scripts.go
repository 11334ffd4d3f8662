package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/scripts"
	"github.com/tas33n/DroidWright/internal/server"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List the built-in automation scripts",
	Args:  cobra.NoArgs,
	RunE:  runScripts,
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
}

func runScripts(cmd *cobra.Command, args []string) error {
	var infos []server.ScriptInfo
	for _, sc := range scripts.All() {
		infos = append(infos, server.ScriptInfo{Name: sc.Name(), Summary: sc.Summary(), Params: sc.Params()})
	}
	return printResult(infos)
}
