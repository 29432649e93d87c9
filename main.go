package main

import "github.com/aceteam-ai/modulus-cli/cmd"

func main() {
	cmd.Execute()
}
