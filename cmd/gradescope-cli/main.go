package main

import (
	"context"

	"gradescope-scraper/cmd/gradescope-cli/commands"

	_ "time/tzdata"
)

func main() {
	commands.ExecuteContext(context.Background())
}
