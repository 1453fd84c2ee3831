package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	cli := parseArgs(os.Args[1:])
	cfg := LoadConfigOrDefault(cli.Config)

	switch cli.mode {
	case playMode:
		checkf(runPlay(context.Background(), cli.Play, cfg), "failed to play %s", cli.Play.Path)
	case renderMode:
		checkf(runRender(cli.Render, cfg), "failed to render %s", cli.Render.Path)
	case infoMode:
		checkf(runInfo(cli.Info, cfg, os.Stdout), "failed to read %s", cli.Info.Path)
	case versionMode:
		fmt.Println("chipplay", version())
	}
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
