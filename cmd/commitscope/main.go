package main

import "github.com/javanhut/commitscope/cli"

func main() {
	cli.Execute()
}
