package main

import "search/internal/cli"

func main() {
	cli.Execute()
}
