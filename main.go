package main

import "github.com/tanq16/wikigrab/cmd"

func main() {
	cmd.Execute()
}
