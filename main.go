package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		checkf(runMain(cli.Run, cli.Config), "run failed")
	case romInfosMode:
		checkf(romInfosMain(os.Stdout, cli.RomInfos.RomPaths), "rom-infos failed")
	case disasmMode:
		checkf(disasmMain(os.Stdout, cli.Disasm), "disasm failed")
	case versionMode:
		printVersion()
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nescore", version)
}
