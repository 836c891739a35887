package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mistgc/t1gars"
	"github.com/mistgc/t1gars/tga"
	"github.com/urfave/cli/v2"
)

const defaultDB = "t1gars.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func encode(w io.Writer, m image.Image, ext string, mapped bool) error {
	switch ext {
	case ".tga":
		if mapped {
			return tga.EncodeColorMapped(w, m)
		}
		return tga.Encode(w, m)
	case ".png":
		return png.Encode(w, m)
	default:
		return fmt.Errorf("unsupported output format \"%s\"", ext)
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "t1gars"
	app.Usage = "Truevision TGA toolkit"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"T1GARS_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Print the header of a TGA file",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := tga.ReadFile(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Release()

				h := m.Header
				format, err := h.PixelFormat()
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("image type:   %d\n", h.Type)
				fmt.Printf("dimensions:   %dx%d\n", h.Width, h.Height)
				fmt.Printf("pixel depth:  %d\n", h.PixelDepth)
				fmt.Printf("pixel format: %s\n", format)
				fmt.Printf("descriptor:   %#02x\n", h.Descriptor)
				fmt.Printf("pixel data:   %d bytes\n", m.Data.Cap())
				if m.Map != nil {
					fmt.Printf("color map:    %d entries of %d bytes\n", m.Map.Count, m.Map.EntrySize)
				}

				return nil
			},
		},
		{
			Name:        "convert",
			Usage:       "Convert between TGA and other image formats",
			Description: "The output format is chosen by the destination file extension.",
			ArgsUsage:   "SRC DST",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "mapped",
					Usage: "write color-mapped TGA output",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				in, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer in.Close()

				m, _, err := image.Decode(in)
				if err != nil {
					return cli.Exit(err, 1)
				}

				out, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer out.Close()

				ext := strings.ToLower(filepath.Ext(c.Args().Get(1)))
				if err := encode(out, m, ext, c.Bool("mapped")); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan a filesystem tree and catalog TGA files",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := log.New(io.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				m, err := t1gars.New(c.String("db"), logger)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
