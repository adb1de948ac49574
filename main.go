package main

import "github.com/joshdurbin/runcoach/internal/cmd"

func main() {
	cmd.Execute()
}
