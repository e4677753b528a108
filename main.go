package main

import "github.com/relloyd/hpingest/cmd"

func main() {
	cmd.Execute()
}
