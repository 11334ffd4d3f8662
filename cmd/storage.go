package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/storage"
)

// StorageValue is the output of storage get.
type StorageValue struct {
	Namespace string `yaml:"namespace"       json:"namespace"`
	Key       string `yaml:"key"             json:"key"`
	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
	Found     bool   `yaml:"found"           json:"found"`
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and edit the script key-value store",
	Long: `Each script reads and writes its own namespace, named after the script.
These commands read and write the same database outside a run.`,
}

var storageGetCmd = &cobra.Command{
	Use:   "get <namespace> <key>",
	Short: "Read a value",
	Args:  cobra.ExactArgs(2),
	RunE:  runStorageGet,
}

var storagePutCmd = &cobra.Command{
	Use:   "put <namespace> <key> <value>",
	Short: "Write a value",
	Args:  cobra.ExactArgs(3),
	RunE:  runStoragePut,
}

var storageListCmd = &cobra.Command{
	Use:   "list <namespace>",
	Short: "List every key in a namespace",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageList,
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageGetCmd, storagePutCmd, storageListCmd)
}

func runStorageGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	v, ok, err := db.Namespace(args[0]).Get(ctx, args[1])
	if err != nil {
		return err
	}
	return printResult(StorageValue{Namespace: args[0], Key: args[1], Value: v, Found: ok})
}

func runStoragePut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if err := db.Namespace(args[0]).Put(ctx, args[1], args[2]); err != nil {
		return err
	}
	return printResult(StorageValue{Namespace: args[0], Key: args[1], Value: args[2], Found: true})
}

func runStorageList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	entries, err := db.Namespace(args[0]).List(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	return printResult(entries)
}
