package main

import "github.com/emiliopalmerini/bayesab/internal/cli"

func main() {
	cli.Execute()
}
