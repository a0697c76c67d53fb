// hairtool builds strand group assets from curve files or procedural settings.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build":
		err = cmdBuild(args)
	case "generate", "gen":
		err = cmdGenerate(args)
	case "info":
		err = cmdInfo(args)
	case "lod":
		err = cmdLOD(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hairtool - strand group asset builder

Usage:
  hairtool <command> [options]

Commands:
  build [options] <out.hstr> <in.hcrv>...   Build strand groups from curve files
  generate [options] <out.hstr>             Grow a procedural strand group
  info <file>                               Show curve or strand group file contents
  lod [-csv out.csv] <file.hstr>            Print per-level LOD statistics
  config [-o path]                          Write the effective configuration

Build options:
  -config <path>    Config file (default ./hairbuild.yaml or user config dir)
  -mesh <path>      glTF reference surface for root UVs and mesh placement
  -layout <name>    sequential or interleaved
  -resample <n>     Resample every strand to n particles
  -lod=false        Skip the LOD chain
  -debug, -log      Logging

Examples:
  hairtool build -mesh scalp.glb hair.hstr bangs.hcrv crown.hcrv
  hairtool generate -name fuzz -curves fuzz.hcrv fuzz.hstr
  hairtool lod -csv levels.csv hair.hstr`)
}
