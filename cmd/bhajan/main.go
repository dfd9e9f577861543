package main

import "github.com/tessro/bhajan/internal/cli"

func main() {
	cli.Execute()
}
