package main

import "theory-keys/cmd"

func main() {
	cmd.Execute()
}
