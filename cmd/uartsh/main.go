package main

//go-build: CGO_ENABLED=0

import (
	"github.com/robotalks/softuart/pkg/cli/sh"
	"github.com/robotalks/softuart/pkg/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
