package main

import "cardkey/cmd"

func main() {
	cmd.Execute()
}
