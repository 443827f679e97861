package main

import "github.com/tanq16/parget/cmd"

func main() {
	cmd.Execute()
}
