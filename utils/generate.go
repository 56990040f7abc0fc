package utils

import (
	"log/slog"
	"os"
	"time"

	"github.com/goocy/hypermaze/api"
	"github.com/goocy/hypermaze/config"
	"github.com/goocy/hypermaze/maze"
	"github.com/goocy/hypermaze/vopl"
)

// generate loads a config and runs it with its own seed.
func generate(cfgPath string, log *slog.Logger) (*maze.Result, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	res, err := cfg.Generate(cfg.Rand(), log)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

func logResult(log *slog.Logger, res *maze.Result) {
	for _, w := range res.Warnings {
		log.Warn("generation warning", "err", w)
	}
	log.Info("maze generated",
		"dims", res.Grid.Dimensions(),
		"exit", res.Exit,
		"face", res.ExitFace,
		"max_distance", res.Distance.Max(),
		"components", res.Components,
		"fingerprint", vopl.Fingerprint(res.Volume),
	)
}

// RunGenerate writes the maze described by cfgPath to outPath as a
// .voplpack.
func RunGenerate(cfgPath, outPath string, log *slog.Logger) error {
	res, cfg, err := generate(cfgPath, log)
	if err != nil {
		return err
	}
	logResult(log, res)
	layout, comp, err := cfg.Pack()
	if err != nil {
		return err
	}
	start := time.Now()
	data, err := api.VolumeToPack(res.Volume, layout, comp)
	if err != nil {
		return err
	}
	log.Debug("pack encoded", "bytes", len(data), "ms", time.Since(start).Milliseconds())
	return os.WriteFile(outPath, data, 0o644)
}

// RunGLB writes the maze described by cfgPath to outPath as a binary glTF.
func RunGLB(cfgPath, outPath string, log *slog.Logger) error {
	res, _, err := generate(cfgPath, log)
	if err != nil {
		return err
	}
	logResult(log, res)
	data, err := api.VolumeToGLB(res.Volume)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

// RunPackToGLB meshes a .voplpack written by RunGenerate.
func RunPackToGLB(inPackPath, outGlbPath string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return err
	}
	vol, err := api.PackToVolume(data)
	if err != nil {
		return err
	}
	glb, err := api.VolumeToGLB(vol)
	if err != nil {
		return err
	}
	return os.WriteFile(outGlbPath, glb, 0o644)
}
