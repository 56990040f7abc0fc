package utils

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"

	"github.com/goocy/hypermaze/api"
	"github.com/goocy/hypermaze/config"
	"github.com/goocy/hypermaze/vopl"
)

const weyl = uint64(0x9e3779b97f4a7c15)

// batchWorkers caps how many mazes RunBatch holds in memory at once.
var batchWorkers = runtime.NumCPU()

// batchSeed derives the seed of maze i from a base seed with a Weyl
// progression, so a batch is reproducible from its base seed alone.
func batchSeed(base int64, i int) int64 {
	s := uint64(base) ^ (uint64(i)+1)*weyl
	s &= 0x7fffffffffffffff
	if s == 0 {
		s = weyl >> 1
	}
	return int64(s)
}

// RunBatch generates amount mazes from one config, each with its own derived
// seed, and writes them to outDir as 0.voplpack..(amount-1).voplpack. Mazes
// are generated by at most batchWorkers goroutines; identical outputs are
// reported.
func RunBatch(cfgPath string, amount int, outDir string, log *slog.Logger) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	layout, comp, err := cfg.Pack()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	base := cfg.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	log.Info("batch started", "amount", amount, "base_seed", base)

	prints := make([]uint64, max(amount, 0))
	errs := make([]error, max(amount, 0))
	build := func(i int) error {
		seed := batchSeed(base, i)
		res, err := cfg.Generate(rand.New(rand.NewSource(seed)), log.With("maze", i))
		if err != nil {
			return errors.Wrapf(err, "maze %d (seed %d)", i, seed)
		}
		data, err := api.VolumeToPack(res.Volume, layout, comp)
		if err != nil {
			return errors.Wrapf(err, "maze %d", i)
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d.voplpack", i))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		prints[i] = vopl.Fingerprint(res.Volume)
		return nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(batchWorkers, amount) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = build(i)
			}
		}()
	}
	for i := range amount {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	seen := mapset.New[uint64]()
	for i, fp := range prints {
		if seen.Has(fp) {
			log.Warn("duplicate maze in batch", "maze", i, "fingerprint", fp)
		}
		seen.Put(fp)
	}
	log.Info("batch done", "amount", amount, "distinct", seen.Size())
	return nil
}
