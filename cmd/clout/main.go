package main

import (
	"clout/cmd/cmd"
	"clout/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
