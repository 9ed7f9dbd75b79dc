// meshtool compresses Wavefront OBJ meshes into quantized UTF-8 streams.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/config"
	"github.com/Faultbox/meshpack/internal/logger"
	"github.com/Faultbox/meshpack/internal/pipeline"
	"github.com/Faultbox/meshpack/pkg/codec"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/mesh"
	"github.com/Faultbox/meshpack/pkg/quantize"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "compress", "c":
		err = cmdCompress(cfg, args)
	case "info":
		err = cmdInfo(cfg, args)
	case "dump":
		err = cmdDump(cfg, args)
	case "verify":
		err = cmdVerify(args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - quantized mesh compressor

Usage:
  meshtool [global options] <command> [options]

Commands:
  compress <file.obj> [outdir]          Compress every texture batch of a model
  info <file.obj>                       Show sources, materials and batches
  dump [-quantized] <file.obj> [tex]    Print a batch as JavaScript arrays
  verify <stream>                       Decode a stream (.zst accepted)
  config [path]                         Save the effective config (default: user config dir)

Global options:
  -config <file>    Config file (default: meshpack.yaml)
  -out <dir>        Output directory
  -workers <n>      Batches compressed concurrently
  -zstd             Also write zstd-compressed sidecars
  -no-params        Do not write quantization params
  -charset <name>   Text encoding of OBJ/MTL input (euc-kr, cp1252, ...)
  -quiet            Disable the progress bar
  -debug            Enable debug logging

Examples:
  meshtool compress models/house.obj
  meshtool -zstd -out build compress models/house.obj
  meshtool dump -quantized models/house.obj wall.png
  meshtool verify build/house_wall.utf8.zst`)
}

func parseModel(cfg *config.Config, path string) (*formats.OBJ, error) {
	obj, err := formats.ParseOBJFile(path, formats.OBJOptions{
		Logger:  logger.Named("formats").With(zap.String("file", path)),
		Charset: cfg.Input.Charset,
	})
	if err != nil {
		return nil, err
	}
	if obj.Warnings > 0 {
		logger.Info("model parsed with warnings",
			zap.String("file", path),
			zap.Int("warnings", obj.Warnings))
	}
	return obj, nil
}

func cmdCompress(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	dryRun := fs.Bool("n", false, "Compress and verify without writing files")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool compress [-n] <file.obj> [outdir]")
	}
	input := fs.Arg(0)

	outDir := cfg.Output.Dir
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}
	if outDir == "" {
		outDir = filepath.Dir(input)
	}

	logger.Debug("compressing model",
		zap.String("input", input),
		zap.String("out", outDir),
		zap.Int("workers", cfg.Pipeline.Workers))

	obj, err := parseModel(cfg, input)
	if err != nil {
		return err
	}
	batches := obj.Batches()
	if len(batches) == 0 {
		return fmt.Errorf("%s: no faces", input)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := pipeline.Options{
		Workers:  cfg.Pipeline.Workers,
		Renumber: cfg.Pipeline.Renumber,
		Logger:   logger.Named("pipeline"),
	}
	var bar *progressbar.ProgressBar
	if cfg.Pipeline.Progress {
		bar = progressbar.Default(int64(len(batches)), "compressing")
		opts.Progress = func() { _ = bar.Add(1) }
	}

	results, err := pipeline.CompressAll(ctx, batches, opts)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}
	if err := pipeline.Verify(results); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if *dryRun {
		for _, r := range results {
			fmt.Printf("%-32s %6d vertices %7d triangles %9d bytes\n",
				displayTexture(r.Texture), r.Vertices, r.Triangles, len(r.Data))
		}
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	written, err := pipeline.WriteResults(outDir, base, results, pipeline.OutputOptions{
		Extension:   cfg.Output.Extension,
		Zstd:        cfg.Output.Zstd,
		WriteParams: cfg.Output.WriteParams,
	})
	if err != nil {
		return err
	}

	for _, path := range written {
		fmt.Println(path)
	}
	logger.Info("compression complete",
		zap.String("input", input),
		zap.Int("batches", len(results)),
		zap.Int("files", len(written)))
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: meshtool info <file.obj>")
	}

	obj, err := parseModel(cfg, args[0])
	if err != nil {
		return err
	}

	src := &obj.Sources
	fmt.Printf("Model:      %s\n", args[0])
	fmt.Printf("Positions:  %d\n", src.PositionCount())
	fmt.Printf("TexCoords:  %d\n", src.TexCoordCount())
	fmt.Printf("Normals:    %d\n", src.NormalCount())
	fmt.Printf("Materials:  %d\n", len(obj.Materials))
	fmt.Printf("Warnings:   %d\n", obj.Warnings)
	fmt.Println()
	fmt.Println("Batches:")

	for _, b := range obj.Batches() {
		fmt.Printf("  %-32s %6d vertices %7d triangles\n",
			displayTexture(b.Texture), b.VertexCount(), b.Mesh().TriangleCount())
	}
	return nil
}

func cmdDump(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	quantized := fs.Bool("quantized", false, "Dump quantized attributes")
	dequantized := fs.Bool("dequantized", false, "Dump attributes after a quantization round trip")
	params := fs.Bool("params", false, "Also dump quantization params")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool dump [-quantized|-dequantized] [-params] <file.obj> [texture]")
	}
	texture := fs.Arg(1)

	obj, err := parseModel(cfg, fs.Arg(0))
	if err != nil {
		return err
	}

	var m *mesh.DrawMesh
	for _, b := range obj.Batches() {
		if b.Texture == texture {
			m = b.Mesh()
			break
		}
	}
	if m == nil {
		return fmt.Errorf("no batch for texture %q", texture)
	}

	return dumpBatch(os.Stdout, m, *quantized, *dequantized, *params)
}

// dumpBatch writes the attributes in the requested form, float by default,
// then the indices. The params object comes first when asked for.
func dumpBatch(w io.Writer, m *mesh.DrawMesh, quantized, dequantized, params bool) error {
	if !quantized && !dequantized && !params {
		if err := mesh.DumpAttribs(w, m.Attribs); err != nil {
			return err
		}
		return mesh.DumpIndices(w, m.Indices)
	}

	q, p := quantize.Mesh(m.Attribs)
	if params {
		if err := p.DumpJSON(w); err != nil {
			return err
		}
	}

	var err error
	switch {
	case quantized:
		err = quantize.DumpQuantized(w, q)
	case dequantized:
		err = mesh.DumpAttribs(w, quantize.Dequantized(q, &p))
	default:
		err = mesh.DumpAttribs(w, m.Attribs)
	}
	if err != nil {
		return err
	}
	return mesh.DumpIndices(w, m.Indices)
}

func cmdVerify(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: meshtool verify <stream>")
	}

	data, err := pipeline.ReadStream(args[0])
	if err != nil {
		return err
	}
	dec, err := codec.DecodeMesh(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Printf("Stream:     %s\n", args[0])
	fmt.Printf("Bytes:      %d\n", len(data))
	fmt.Printf("Vertices:   %d\n", dec.Attribs.VertexCount())
	fmt.Printf("Indices:    %d\n", len(dec.Indices))
	if len(dec.Indices)%3 != 0 {
		logger.Warn("index count is not a multiple of 3",
			zap.String("stream", args[0]),
			zap.Int("indices", len(dec.Indices)))
	}
	if !mesh.IsFirstUseOrdered(dec.Indices) {
		return fmt.Errorf("%s: indices are not in first-use order", args[0])
	}
	fmt.Println("OK")
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	var path string
	var err error
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		path, err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func displayTexture(texture string) string {
	if texture == "" {
		return "(untextured)"
	}
	return texture
}
