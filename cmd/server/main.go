package main

import (
	"context"
	"os"

	"github.com/thatlq1812/sitetools/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
