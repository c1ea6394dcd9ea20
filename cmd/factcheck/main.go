// Command factcheck submits YouTube videos to the fact-checking backend
// from the terminal.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_factcheck/cmd/factcheck/commands"
)

func main() {
	_ = godotenv.Load()
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
