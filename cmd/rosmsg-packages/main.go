package main

import "rosmsg-packages/internal/cli"

func main() {
	cli.Execute()
}
