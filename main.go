package main

import "github.com/relloyd/bqload/cmd"

func main() {
	cmd.Execute()
}
