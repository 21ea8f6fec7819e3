package main

import "spot_market/cmd/spotctl/commands"

func main() {
	commands.Execute()
}
