package main

import "github.com/mfigueira/bananachat/internal/commands"

func main() {
	commands.Execute()
}
