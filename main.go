//go:build !(js && wasm)

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/goocy/hypermaze/utils"
)

func usage() {
	fmt.Println("Usage: hypermaze [-v] <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  generate config.json output.voplpack        (generate a maze and pack its voxel volume)")
	fmt.Println("  glb config.json output.glb                  (generate a maze and write a greedy-meshed .glb)")
	fmt.Println("  batch config.json <amount> output_dir       (generate N mazes with seeds derived from the config seed)")
	fmt.Println("  unpack input.voplpack output_dir            (write each chunk of a pack as a .vopl file)")
	fmt.Println("  pack2glb input.voplpack output.glb          (mesh a packed maze into a .glb)")
}

func main() {
	verbose := flag.Bool("v", false, "log debug output")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	if err := run(args, log); err != nil {
		log.Error("command failed", "command", args[0], "err", err)
		os.Exit(1)
	}
	fmt.Println("Operation completed!")
}

func run(args []string, log *slog.Logger) error {
	need := func(n int) {
		if len(args) != n {
			usage()
			os.Exit(1)
		}
	}
	switch args[0] {
	case "generate":
		need(3)
		return utils.RunGenerate(args[1], args[2], log)
	case "glb":
		need(3)
		return utils.RunGLB(args[1], args[2], log)
	case "batch":
		need(4)
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		return utils.RunBatch(args[1], amount, args[3], log)
	case "unpack":
		need(3)
		return utils.RunUnpack(args[1], args[2])
	case "pack2glb":
		need(3)
		return utils.RunPackToGLB(args[1], args[2])
	}
	usage()
	os.Exit(1)
	return nil
}
