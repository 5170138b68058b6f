package main

import "github.com/mcoot/committy/internal/cli"

func main() {
	cli.Execute()
}
