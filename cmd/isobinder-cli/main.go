package main

import "isobinder/cmd/isobinder-cli/cmd"

func main() {
	cmd.Execute()
}
