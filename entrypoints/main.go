package main

import (
	"github.com/Laisky/websearch-mcp/cmd"
)

func main() {
	cmd.Execute()
}
