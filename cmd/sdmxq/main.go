// Package main is the entry point for the sdmxq command line client.
package main

import (
	"os"

	"github.com/leourb/sdmx-query-tool/cmd/sdmxq/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
