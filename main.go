package main

import "github.com/mselser95/bookie-arb/cmd"

func main() {
	cmd.Execute()
}
