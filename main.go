package main

import (
	"github.com/tas33n/DroidWright/cmd"

	_ "github.com/tas33n/DroidWright/internal/platform/adb"
)

func main() {
	cmd.Execute()
}
