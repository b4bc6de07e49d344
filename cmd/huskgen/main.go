// huskgen builds GLB meshes from YAML surface definitions.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/husk/internal/logger"
	"github.com/Faultbox/husk/pkg/model"
)

func main() {
	var (
		out      = flag.String("o", "", "output path (default: definition name with .glb)")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
		logFile  = flag.String("log-file", "", "optional rotating log file")
		validate = flag.Bool("validate", false, "re-open the output and log mesh stats")
	)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	logger.Init(*logLevel, *logFile)
	defer logger.Sync()

	in := flag.Arg(0)
	if *out == "" {
		*out = strings.TrimSuffix(in, filepath.Ext(in)) + ".glb"
	}
	if err := run(in, *out, *validate); err != nil {
		logger.Error("build failed", zap.String("definition", in), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `huskgen - build GLB meshes from YAML surface definitions

Usage:
  huskgen [options] <definition.yaml>

Options:
  -o <path>         output path (default: definition name with .glb)
  -log-level <lvl>  log level: debug, info, warn, error
  -log-file <path>  also log to a rotating file
  -validate         re-open the output and log mesh stats

Example:
  huskgen -o pyramid.glb -validate pyramid.yaml`)
}

func run(in, out string, validate bool) error {
	def, err := model.LoadFile(in)
	if err != nil {
		return err
	}
	h, err := def.Build()
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := h.WriteGLB(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}
	logger.Info("wrote container",
		zap.String("path", out),
		zap.Int("vertices", h.NumVertices()),
		zap.Int("faces", h.NumFaces()))

	if validate {
		return validateGLB(out)
	}
	return nil
}

// validateGLB re-opens the output with an independent glTF decoder.
func validateGLB(path string) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		return fmt.Errorf("validate %s: expected a single mesh with one primitive", path)
	}
	prim := doc.Meshes[0].Primitives[0]
	if prim.Indices == nil {
		return fmt.Errorf("validate %s: primitive has no indices", path)
	}
	logger.Info("validated container",
		zap.String("path", path),
		zap.Int("accessors", len(doc.Accessors)),
		zap.Int("indices", int(doc.Accessors[*prim.Indices].Count)),
		zap.Int("nodes", len(doc.Nodes)))
	return nil
}
