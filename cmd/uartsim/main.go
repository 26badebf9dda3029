package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/softuart/pkg/env"
	fx "github.com/robotalks/softuart/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.NewConfig().MustNewEnv()
	defer e.Close()
	if err := fx.NewRunner().HandleSignals().Go(e).Wait(); err != nil {
		glog.Fatal(err)
	}
}
