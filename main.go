package main

import "github.com/Tiliavir/resource-board/cmd"

func main() {
	cmd.Execute()
}
