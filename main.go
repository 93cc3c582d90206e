package main

import "minbar/cmd"

func main() {
	cmd.Execute()
}
