package main

import "portfolio-api/internal/commands"

func main() {
	commands.Execute()
}
