package main

import (
	"flag"
	"fmt"
	"io"

	"goldenseed.dev/gqs/seed"
	"goldenseed.dev/gqs/stream"
)

// The demo renders deterministic ASCII art from stream bytes: same seed
// number, same picture, forever. It consumes nothing but public segment
// reads.

const (
	artWidth  = 60
	artHeight = 8
	artChars  = " .:-=+*#%@"
)

func cmdDemo(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gqs demo", flag.ContinueOnError)
	fs.SetOutput(errOut)
	seedNumber := fs.Uint64("seed-number", 42, "demo seed number")
	seedID := fs.String("seed", seed.DefaultID, "named seed")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	seedHex, err := seed.Resolve(*seedID, "")
	if err != nil {
		return fail(errOut, err)
	}

	// Different seed numbers select different windows of the same stream.
	offset := (*seedNumber % 100) * stream.ChunkSize
	pixels, err := stream.ReadSegment(seedHex, offset, artWidth*artHeight)
	if err != nil {
		return fail(errOut, err)
	}
	palette, err := stream.ReadSegment(seedHex, offset+artWidth*artHeight, 3*6)
	if err != nil {
		return fail(errOut, err)
	}

	fmt.Fprintf(out, "seed %s, number %d\n\n", *seedID, *seedNumber)
	for y := 0; y < artHeight; y++ {
		row := make([]byte, artWidth)
		for x := 0; x < artWidth; x++ {
			row[x] = artChars[int(pixels[y*artWidth+x])%len(artChars)]
		}
		fmt.Fprintln(out, string(row))
	}
	fmt.Fprintln(out)
	for i := 0; i < 6; i++ {
		r, g, b := palette[i*3], palette[i*3+1], palette[i*3+2]
		fmt.Fprintf(out, "color %d: #%02x%02x%02x\n", i+1, r, g, b)
	}
	return 0
}
