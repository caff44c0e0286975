package main

import (
	"github.com/sakura24999/data-analysis-dashboard/cmd/dashboard/web"
	"github.com/sakura24999/data-analysis-dashboard/internal/cli"
)

func main() {
	cli.Execute(web.Files)
}
