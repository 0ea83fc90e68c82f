/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/bolt/engine"
	"github.com/spaghettifunk/bolt/engine/config"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer/headless"
	"github.com/spaghettifunk/bolt/testbed"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("BOLT_CONFIG"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		panic(err)
	}

	backend := headless.New()
	// nothing inspects the command log outside of tests
	backend.Recording = false

	engine, err := engine.New(tb.Game, backend)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// stop the frame loop on sigterm and friends
	go func() {
		<-sigCh
		engine.Stop()
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogError(err.Error())
	}
	if err := engine.Shutdown(); err != nil {
		panic(err)
	}
}
