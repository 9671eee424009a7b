package main

import "sf-housing/cmd"

func main() {
	cmd.Execute()
}
