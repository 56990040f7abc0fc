package utils

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/goocy/hypermaze/vopl"
)

// RunUnpack writes every chunk of a .voplpack into outputDir as a
// standalone .vopl file named after its pack entry.
func RunUnpack(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	pack, _, err := vopl.UnmarshalPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(pack.Entries))
	for i, e := range pack.Entries {
		if !pack.IsChunk(i) {
			continue
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			if err := os.WriteFile(filepath.Join(outputDir, filepath.Base(name)), pack.File(i), 0o644); err != nil {
				errCh <- err
			}
		}(i, e.Name)
	}
	wg.Wait()
	close(errCh)
	if err, ok := <-errCh; ok {
		return err
	}
	return nil
}
