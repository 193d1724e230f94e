// Command gqs-stored serves a filesystem-backed envelope store over gRPC.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"goldenseed.dev/gqs/store/grpcstore"
	"goldenseed.dev/gqs/store/localfs"
)

func main() {
	fs := flag.NewFlagSet("gqs-stored", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	root := fs.String("root", "", "envelope store root directory")
	_ = fs.Parse(os.Args[1:])

	if *root == "" {
		fmt.Fprintln(os.Stderr, "gqs-stored: --root is required")
		os.Exit(2)
	}

	backend, err := localfs.New(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	server := grpc.NewServer()
	grpcstore.RegisterEnvelopeStoreServer(server, &grpcstore.Server{Store: backend})

	fmt.Fprintf(os.Stderr, "gqs-stored: serving %s on %s\n", *root, *listen)
	if err := server.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
