/*
Demo application animating a small text scene with the engine package.
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/vecglyph/vecglyph/engine"
	"github.com/vecglyph/vecglyph/testbed"
)

func main() {
	configPath := flag.String("config", "vecglyph.toml", "path to the TOML configuration")
	record := flag.Int("record", 0, "render N frames to PNG files instead of opening a window")
	recordDir := flag.String("out", "frames", "output directory for -record")
	recordFPS := flag.Int("fps", 60, "synthetic frame rate for -record")
	flag.Parse()

	if *record > 0 {
		if err := testbed.Record(*configPath, *recordDir, *record, *recordFPS); err != nil {
			panic(err)
		}
		return
	}

	game := testbed.NewGame(*configPath)

	eng, err := engine.New(game)
	if err != nil {
		panic(err)
	}

	if err := eng.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		_ = eng.Shutdown()
	}()

	if err := eng.Run(); err != nil {
		panic(err)
	}

	_ = eng.Shutdown()
}
