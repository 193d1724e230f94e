// Command gqs is the GoldenSeed stream codec CLI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"goldenseed.dev/gqs/catalog"
	"goldenseed.dev/gqs/codec"
	"goldenseed.dev/gqs/envelope"
	"goldenseed.dev/gqs/keys"
	"goldenseed.dev/gqs/seed"
	"goldenseed.dev/gqs/stream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:], out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "ref":
		return cmdRef(args[1:], out, errOut)
	case "read":
		return cmdRead(args[1:], out, errOut)
	case "stats":
		return cmdStats(args[1:], out, errOut)
	case "catalog":
		return cmdCatalog(args[1:], out, errOut)
	case "store":
		return cmdStore(args[1:], out, errOut)
	case "demo":
		return cmdDemo(args[1:], out, errOut)
	case "keygen":
		return cmdKeygen(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "gqs: GoldenSeed stream codec CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gqs encode [--seed <name>] [--seed-hex <hex>] [--scan-depth <n>] [--binary] --in <file> --out <file>")
	fmt.Fprintln(w, "  gqs decode --in <envelope> --out <file>")
	fmt.Fprintln(w, "  gqs ref [--seed <name>] [--seed-hex <hex>] [--binary] --offset <n> --length <n> --out <file>")
	fmt.Fprintln(w, "  gqs read [--seed <name>] [--seed-hex <hex>] --offset <n> --length <n> [--out <file>]")
	fmt.Fprintln(w, "  gqs stats --in <file> --envelope <envelope>")
	fmt.Fprintln(w, "  gqs catalog register --catalog <file> --key <k> --in <file> [--seed <name>]")
	fmt.Fprintln(w, "  gqs catalog decode --catalog <file> --key <k> --out <file>")
	fmt.Fprintln(w, "  gqs catalog list --catalog <file>")
	fmt.Fprintln(w, "  gqs catalog sign --catalog <file> --signer <name> [--key-dir <dir>] --out <file>")
	fmt.Fprintln(w, "  gqs catalog verify --in <signed> [--catalog <file>]")
	fmt.Fprintln(w, "  gqs store put --target <addr> --in <envelope>")
	fmt.Fprintln(w, "  gqs store get --target <addr> --cid <cid> --out <file>")
	fmt.Fprintln(w, "  gqs demo [--seed-number <n>]")
	fmt.Fprintln(w, "  gqs keygen --name <name> [--key-dir <dir>] [--force]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - named seeds:", seedNames())
	fmt.Fprintln(w, "  - envelope files are auto-detected: binary (GQSE magic) or JSON")
	fmt.Fprintln(w, "  - a file name of \"-\" means stdin/stdout")
}

func seedNames() string {
	names := seed.Names()
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadEnvelope auto-detects the wire format by the binary magic.
func loadEnvelope(path string) (*envelope.Envelope, error) {
	b, err := readInput(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(b, envelope.Magic) {
		return envelope.FromBinary(b)
	}
	return envelope.FromJSON(b)
}

func saveEnvelope(path string, env *envelope.Envelope, binary bool) error {
	var b []byte
	var err error
	if binary {
		b, err = env.ToBinary()
	} else {
		b, err = env.ToJSON()
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	return writeOutput(path, b)
}

func fail(errOut io.Writer, err error) int {
	fmt.Fprintln(errOut, "error:", err)
	return 1
}

func cmdEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedID := fs.String("seed", seed.DefaultID, "named seed")
	seedHex := fs.String("seed-hex", "", "explicit hex seed (overrides --seed)")
	scanDepth := fs.Int("scan-depth", codec.DefaultScanDepth, "chunks to scan for a stream match")
	binary := fs.Bool("binary", false, "write the binary envelope form")
	in := fs.String("in", "", "input data file")
	outPath := fs.String("out", "-", "output envelope file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	data, err := readInput(*in)
	if err != nil {
		return fail(errOut, err)
	}
	env, err := codec.Encode(data, *seedID, codec.Options{SeedHex: *seedHex, ScanDepth: *scanDepth})
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveEnvelope(*outPath, env, *binary); err != nil {
		return fail(errOut, err)
	}

	stats, err := codec.CompressionStats(data, env)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(errOut, "mode=%s envelope=%dB ratio=%.2f\n", stats.Mode, stats.EnvelopeSize, stats.CompressionRatio)
	return 0
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "envelope file")
	outPath := fs.String("out", "-", "output data file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env, err := loadEnvelope(*in)
	if err != nil {
		return fail(errOut, err)
	}
	data, err := codec.Decode(env)
	if err != nil {
		return fail(errOut, err)
	}
	if err := writeOutput(*outPath, data); err != nil {
		return fail(errOut, err)
	}
	return 0
}

func cmdRef(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs ref", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedID := fs.String("seed", seed.DefaultID, "named seed")
	seedHex := fs.String("seed-hex", "", "explicit hex seed (overrides --seed)")
	offset := fs.Uint64("offset", 0, "stream offset in bytes")
	length := fs.Uint64("length", 0, "segment length in bytes")
	binary := fs.Bool("binary", false, "write the binary envelope form")
	outPath := fs.String("out", "-", "output envelope file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env, err := codec.EncodeStreamReference(*seedID, *offset, *length, codec.Options{SeedHex: *seedHex})
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveEnvelope(*outPath, env, *binary); err != nil {
		return fail(errOut, err)
	}
	ratio, err := env.CompressionRatio()
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(errOut, "ratio=%.2f\n", ratio)
	return 0
}

func cmdRead(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs read", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedID := fs.String("seed", seed.DefaultID, "named seed")
	seedHex := fs.String("seed-hex", "", "explicit hex seed (overrides --seed)")
	offset := fs.Uint64("offset", 0, "stream offset in bytes")
	length := fs.Uint64("length", 0, "bytes to read")
	outPath := fs.String("out", "-", "output file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	resolved, err := seed.Resolve(*seedID, *seedHex)
	if err != nil {
		return fail(errOut, err)
	}
	data, err := stream.ReadSegment(resolved, *offset, *length)
	if err != nil {
		return fail(errOut, err)
	}
	if err := writeOutput(*outPath, data); err != nil {
		return fail(errOut, err)
	}
	return 0
}

func cmdStats(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs stats", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "original data file")
	envPath := fs.String("envelope", "", "envelope file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	data, err := readInput(*in)
	if err != nil {
		return fail(errOut, err)
	}
	env, err := loadEnvelope(*envPath)
	if err != nil {
		return fail(errOut, err)
	}
	stats, err := codec.CompressionStats(data, env)
	if err != nil {
		return fail(errOut, err)
	}
	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, string(b))
	return 0
}

func cmdKeygen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs keygen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "key name")
	dir := fs.String("key-dir", "", "key directory (default ~/.gqs/keys)")
	force := fs.Bool("force", false, "overwrite an existing key")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ks, err := keys.OpenStore(*dir)
	if err != nil {
		return fail(errOut, err)
	}
	pub, err := ks.Generate(*name, *force)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, keys.PublicKeyString(pub))
	return 0
}

// loadCatalog reads a catalog export file into a fresh catalog. A missing
// file yields an empty catalog so register can bootstrap one.
func loadCatalog(path string) (*catalog.Catalog, error) {
	c := catalog.New()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if _, err := c.Import(b); err != nil {
		return nil, err
	}
	return c, nil
}

func saveCatalog(path string, c *catalog.Catalog) error {
	b, err := c.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func cmdCatalog(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "catalog: missing subcommand (register, decode, list, sign, verify)")
		return 2
	}
	switch args[0] {
	case "register":
		return cmdCatalogRegister(args[1:], out, errOut)
	case "decode":
		return cmdCatalogDecode(args[1:], out, errOut)
	case "list":
		return cmdCatalogList(args[1:], out, errOut)
	case "sign":
		return cmdCatalogSign(args[1:], out, errOut)
	case "verify":
		return cmdCatalogVerify(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "catalog: unknown subcommand %q\n", args[0])
		return 2
	}
}

func cmdCatalogRegister(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs catalog register", flag.ContinueOnError)
	fs.SetOutput(errOut)
	catPath := fs.String("catalog", "", "catalog file")
	key := fs.String("key", "", "catalog key")
	in := fs.String("in", "", "data file")
	seedID := fs.String("seed", seed.DefaultID, "named seed")
	scanDepth := fs.Int("scan-depth", codec.DefaultScanDepth, "chunks to scan for a stream match")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c, err := loadCatalog(*catPath)
	if err != nil {
		return fail(errOut, err)
	}
	data, err := readInput(*in)
	if err != nil {
		return fail(errOut, err)
	}
	env, err := c.Register(*key, data, *seedID, codec.Options{ScanDepth: *scanDepth})
	if err != nil {
		return fail(errOut, err)
	}
	if err := saveCatalog(*catPath, c); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "registered %q mode=%s length=%d\n", *key, env.Mode(), env.Length)
	return 0
}

func cmdCatalogDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs catalog decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	catPath := fs.String("catalog", "", "catalog file")
	key := fs.String("key", "", "catalog key")
	outPath := fs.String("out", "-", "output data file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c, err := loadCatalog(*catPath)
	if err != nil {
		return fail(errOut, err)
	}
	data, err := c.DecodeEntry(*key)
	if err != nil {
		return fail(errOut, err)
	}
	if err := writeOutput(*outPath, data); err != nil {
		return fail(errOut, err)
	}
	return 0
}

func cmdCatalogList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs catalog list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	catPath := fs.String("catalog", "", "catalog file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c, err := loadCatalog(*catPath)
	if err != nil {
		return fail(errOut, err)
	}
	for _, entry := range c.ListEntries() {
		fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", entry.Key, entry.Mode, entry.Length, entry.SeedID)
	}
	return 0
}

func cmdCatalogSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs catalog sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	catPath := fs.String("catalog", "", "catalog file")
	signer := fs.String("signer", "", "key name")
	dir := fs.String("key-dir", "", "key directory (default ~/.gqs/keys)")
	outPath := fs.String("out", "-", "signed export file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	c, err := loadCatalog(*catPath)
	if err != nil {
		return fail(errOut, err)
	}
	ks, err := keys.OpenStore(*dir)
	if err != nil {
		return fail(errOut, err)
	}
	priv, err := ks.Load(*signer)
	if err != nil {
		return fail(errOut, err)
	}
	signed, err := c.ExportSigned(priv)
	if err != nil {
		return fail(errOut, err)
	}
	if err := writeOutput(*outPath, append(signed, '\n')); err != nil {
		return fail(errOut, err)
	}
	return 0
}

func cmdCatalogVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs catalog verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	in := fs.String("in", "", "signed export file")
	catPath := fs.String("catalog", "", "write the verified catalog here (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	b, err := readInput(*in)
	if err != nil {
		return fail(errOut, err)
	}
	c := catalog.New()
	signer, count, err := c.ImportSigned(b)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "verified: %d entries signed by %s\n", count, signer)
	if *catPath != "" {
		if err := saveCatalog(*catPath, c); err != nil {
			return fail(errOut, err)
		}
	}
	return 0
}
