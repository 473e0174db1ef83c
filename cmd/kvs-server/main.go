// Command kvs-server runs the TCP key-value server against a pluggable
// storage engine.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"kvs/internal/boltstore"
	"kvs/internal/engine"
	"kvs/internal/server"
)

const defaultAddr = "127.0.0.1:4000"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("kvs-server", flag.ContinueOnError)
	addr := flags.String("addr", defaultAddr, "server address")
	engineName := flags.String("engine", "kvs", "storage engine: kvs|sled")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *engineName != "kvs" && *engineName != "sled" {
		fmt.Fprintf(os.Stderr, "kvs-server: unknown engine %q (want kvs|sled)\n", *engineName)
		return 1
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kvs-server: init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("starting kvs-server", zap.String("addr", *addr), zap.String("engine", *engineName))

	cwd, err := os.Getwd()
	if err != nil {
		logger.Error("getwd", zap.Error(err))
		return 1
	}

	otherEngine := "sled"
	if *engineName == "sled" {
		otherEngine = "kvs"
	}
	selectedDir := filepath.Join(cwd, *engineName)
	otherDir := filepath.Join(cwd, otherEngine)
	if !exists(selectedDir) && exists(otherDir) {
		logger.Error("wrong engine: data directory for the other engine exists",
			zap.String("selected", selectedDir), zap.String("other", otherDir))
		return 1
	}

	eng, closer, err := openEngine(*engineName, selectedDir, logger)
	if err != nil {
		logger.Error("open engine", zap.Error(err))
		return 1
	}
	defer closer.Close()

	srv := server.New(eng, logger)
	if err := srv.Run(*addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

// openEngine opens the named engine's store against dir, creating dir if it
// doesn't exist yet.
func openEngine(engineName, dir string, logger *zap.Logger) (engine.Engine, io.Closer, error) {
	switch engineName {
	case "kvs":
		st, err := engine.Open(dir, logger)
		return st, st, err
	case "sled":
		st, err := boltstore.Open(dir)
		return st, st, err
	default:
		return nil, nil, fmt.Errorf("kvs-server: unknown engine %q", engineName)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
