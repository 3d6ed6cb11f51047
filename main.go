package main

import "github.com/endorses/dnsbpf/cmd"

func main() {
	cmd.Execute()
}
