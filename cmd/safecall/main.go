package main

import "github.com/baxromumarov/safely/internal/cli"

func main() {
	cli.Execute()
}
