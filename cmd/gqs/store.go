package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/ipfs/go-cid"

	"goldenseed.dev/gqs/store/grpcstore"
)

func cmdStore(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "store: missing subcommand (put, get)")
		return 2
	}
	switch args[0] {
	case "put":
		return cmdStorePut(args[1:], out, errOut)
	case "get":
		return cmdStoreGet(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "store: unknown subcommand %q\n", args[0])
		return 2
	}
}

func dialStore(target string, errOut io.Writer) (*grpcstore.Client, int) {
	client, err := grpcstore.Dial(target, grpcstore.DialOptions{Timeout: 10 * time.Second})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return nil, 1
	}
	client.Timeout = 30 * time.Second
	return client, 0
}

func cmdStorePut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs store put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	target := fs.String("target", "127.0.0.1:7777", "envelope store address")
	in := fs.String("in", "", "envelope file (binary or JSON; stored as binary)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env, err := loadEnvelope(*in)
	if err != nil {
		return fail(errOut, err)
	}
	b, err := env.ToBinary()
	if err != nil {
		return fail(errOut, err)
	}

	client, code := dialStore(*target, errOut)
	if code != 0 {
		return code
	}
	defer client.Close()

	id, err := client.Put(b)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdStoreGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs store get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	target := fs.String("target", "127.0.0.1:7777", "envelope store address")
	cidStr := fs.String("cid", "", "envelope CID")
	outPath := fs.String("out", "-", "output envelope file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	id, err := cid.Decode(*cidStr)
	if err != nil {
		return fail(errOut, err)
	}

	client, code := dialStore(*target, errOut)
	if code != 0 {
		return code
	}
	defer client.Close()

	b, err := client.Get(id)
	if err != nil {
		return fail(errOut, err)
	}
	if err := writeOutput(*outPath, b); err != nil {
		return fail(errOut, err)
	}
	return 0
}
