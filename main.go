package main

import "calendar-sync/cmd"

func main() {
	cmd.Execute()
}
