// Command steerprep turns recorded dashcam sessions into steering datasets
// and keeps a manifest of every build.
//
// Usage:
//
//	steerprep build [flags]
//	steerprep runs [-db path] [-n limit] [run-id]
//	steerprep migrate [-db path] up|down|version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/steering.dataset/internal/version"
)

const defaultDBPath = "steerprep.db"

var versionFlag = flag.Bool("version", false, "Print version information and exit")

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.String())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch args[0] {
	case "build":
		err = runBuild(ctx, args[1:], os.Stdout, os.Stderr)
	case "runs":
		err = runRuns(args[1:], os.Stdout)
	case "migrate":
		err = runMigrate(args[1:], os.Stdout)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `steerprep %s

Commands:
  build     build a dataset variant from recorded sessions
  runs      list recorded builds, or show one by id
  migrate   manage the manifest schema (up, down, version)

Run "steerprep <command> -h" for command flags.
`, version.Version)
}
