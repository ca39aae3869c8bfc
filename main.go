/*
archview opens a window on an extracted game archive and previews the
textures and models found in it.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/archview/engine"
	"github.com/spaghettifunk/archview/engine/config"
	"github.com/spaghettifunk/archview/engine/core"
)

func main() {
	configPath := flag.String("config", "archview.toml", "path to the TOML configuration")
	assetsRoot := flag.String("assets", "", "override the asset root directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if *assetsRoot != "" {
		cfg.Assets.Root = *assetsRoot
	}

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	for _, path := range flag.Args() {
		if err := e.Preview(path); err != nil {
			core.LogWarn("could not preview '%s': %s", path, err.Error())
		}
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// GPU objects must be freed on this thread, the signal only stops the loop
	go func() {
		<-sigCh
		e.Stop()
	}()

	if err := e.Run(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}
