package main

import "github.com/branched-services/go-bundler/cmd/hlbundle/internal/command"

func main() {
	command.Execute()
}
