package main

import "mdlog/cmd/mdlog/cmd"

func main() {
	cmd.Execute()
}
