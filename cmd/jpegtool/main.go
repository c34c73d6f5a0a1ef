// Command jpegtool exercises the jpeg package from the command line:
// decoding a file to raw RGBA, encoding raw RGBA to a JPEG file, or
// printing a file's header metadata.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/andrewscott/go-jpeg/jpeg"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage:")
		fmt.Fprintln(os.Stderr, "  jpegtool decode <in.jpg> <out.rgba>")
		fmt.Fprintln(os.Stderr, "  jpegtool encode <in.rgba> <w> <h> <out.jpg> [quality]")
		fmt.Fprintln(os.Stderr, "  jpegtool info <in.jpg>")
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "decode":
		err = runDecode(args[1:])
	case "encode":
		err = runEncode(args[1:])
	case "info":
		err = runInfo(args[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "jpegtool:", err)
		os.Exit(1)
	}
}

func runDecode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("decode requires <in.jpg> <out.rgba>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := jpeg.Decode(data, jpeg.DecoderOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "decoded %dx%d (%s)\n", img.Width, img.Height, img.ColorSpace)
	return os.WriteFile(args[1], img.PixelData, 0o644)
}

func runEncode(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("encode requires <in.rgba> <w> <h> <out.jpg> [quality]")
	}
	var width, height, quality int
	if _, err := fmt.Sscanf(args[1], "%d", &width); err != nil {
		return fmt.Errorf("invalid width: %w", err)
	}
	if _, err := fmt.Sscanf(args[2], "%d", &height); err != nil {
		return fmt.Errorf("invalid height: %w", err)
	}
	quality = 75
	if len(args) >= 5 {
		if _, err := fmt.Sscanf(args[4], "%d", &quality); err != nil {
			return fmt.Errorf("invalid quality: %w", err)
		}
	}
	rgba, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := jpeg.Encode(rgba, width, height, quality)
	if err != nil {
		return err
	}
	return os.WriteFile(args[3], out, 0o644)
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires <in.jpg>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	meta, err := jpeg.ParseMetadata(data, jpeg.DecoderOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("size: %dx%d\n", meta.Width, meta.Height)
	fmt.Printf("components: %d\n", meta.NumComponents)
	fmt.Printf("color space: %s\n", meta.ColorSpace)
	fmt.Printf("progressive: %v\n", meta.Progressive)
	fmt.Printf("restart interval: %d\n", meta.RestartInterval)
	if meta.JFIF != nil {
		fmt.Printf("JFIF: version %d.%d\n", meta.JFIF.VersionMajor, meta.JFIF.VersionMinor)
	}
	if meta.Adobe != nil {
		fmt.Printf("Adobe transform: %d\n", meta.Adobe.TransformCode)
	}
	if len(meta.ExifBytes) > 0 {
		fmt.Printf("EXIF: %d bytes\n", len(meta.ExifBytes))
	}
	for _, c := range meta.Comments {
		fmt.Printf("comment: %s\n", c)
	}
	return nil
}
