package main

import "github.com/mcoot/lineupsheet/internal/cli"

func main() {
	cli.Execute()
}
