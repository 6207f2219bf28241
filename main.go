package main

import "github.com/automoto/curtaincall/cmd"

func main() {
	cmd.Execute()
}
