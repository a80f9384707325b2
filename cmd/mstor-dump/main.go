// Command mstor-dump opens the mstor database at -path through
// mstor.Open (read-write; a missing or empty file is bootstrapped into a
// fresh store first) and writes a line-per-record listing of its
// contents to stdout. It is
// an operational tool: comparing two dumps is usually the fastest way
// to see what an operation actually touched on disk.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/redfish/mstor/internal/mstor"
)

func main() {
	path := flag.String("path", "", "path to the mstor database file")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: mstor-dump -path <db-file>")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mstor-dump: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	udir := mstor.NewStaticUserDirectory()
	udir.AddUser(mstor.User{Name: "root", UID: mstor.SuperuserUID, GID: mstor.SuperuserUID})
	placer := mstor.NewRoundRobinPlacer([]uint32{1})

	store, err := mstor.Open(mstor.Config{Path: *path}, udir, placer, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mstor-dump: open %s: %v\n", *path, err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Dump(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mstor-dump: dump: %v\n", err)
		os.Exit(1)
	}
}
