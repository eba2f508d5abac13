package main

import "github.com/KaramelBytes/qip-spc-cli/cmd"

func main() {
	cmd.Execute()
}
