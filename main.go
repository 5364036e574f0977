package main

import "booking-platform/cmd"

func main() {
	cmd.Execute()
}
