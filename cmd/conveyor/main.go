package main

import "github.com/conveyor-ci/conveyor/pkg/cli"

func main() {
	cli.Execute()
}
