// Command kvs-client is a thin CLI over the client library: `set`, `get`,
// and `rm` subcommands, each with its own flag set.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"kvs/client"
)

const defaultAddr = "127.0.0.1:4000"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: kvs-client <set|get|rm> ...")
		return 1
	}

	switch args[0] {
	case "set":
		return runSet(args[1:], stderr)
	case "get":
		return runGet(args[1:], stdout, stderr)
	case "rm":
		return runRemove(args[1:], stderr)
	default:
		fmt.Fprintf(stderr, "kvs-client: unknown subcommand %q\n", args[0])
		return 1
	}
}

func runSet(args []string, stderr *os.File) int {
	flags := flag.NewFlagSet("set", flag.ContinueOnError)
	addr := flags.String("addr", defaultAddr, "server address")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	rest := flags.Args()
	if len(rest) != 2 {
		fmt.Fprintln(stderr, "usage: kvs-client set KEY VALUE [--addr host:port]")
		return 1
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer c.Close()

	if err := c.Set(rest[0], rest[1]); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func runGet(args []string, stdout, stderr *os.File) int {
	flags := flag.NewFlagSet("get", flag.ContinueOnError)
	addr := flags.String("addr", defaultAddr, "server address")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: kvs-client get KEY [--addr host:port]")
		return 1
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer c.Close()

	value, ok, err := c.Get(rest[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !ok {
		fmt.Fprintln(stdout, "Key not found")
		return 0
	}
	fmt.Fprintln(stdout, value)
	return 0
}

func runRemove(args []string, stderr *os.File) int {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	addr := flags.String("addr", defaultAddr, "server address")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: kvs-client rm KEY [--addr host:port]")
		return 1
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer c.Close()

	if err := c.Remove(rest[0]); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
