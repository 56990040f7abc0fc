//go:build js && wasm

package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/goocy/hypermaze/api"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

func toJS(out []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(arr, out)
	return arr
}

func fromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

// generateMaze(configJSON string) -> Uint8Array (.glb) or error string
func generateMaze(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing config json")
	}
	out, err := api.ConfigToGLB([]byte(args[0].String()), log)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

// generateMazePack(configJSON string) -> Uint8Array (.voplpack) or error string
func generateMazePack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing config json")
	}
	out, err := api.ConfigToPack([]byte(args[0].String()), log)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

// voplpack2glb(pack Uint8Array) -> Uint8Array (.glb) or error string
func voplpack2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	vol, err := api.PackToVolume(fromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := api.VolumeToGLB(vol)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toJS(out)
}

func unpackVoplpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackToMemory(fromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, toJS(b))
	}
	return result
}

func main() {
	js.Global().Set("generateMaze", js.FuncOf(generateMaze))
	js.Global().Set("generateMazePack", js.FuncOf(generateMazePack))
	js.Global().Set("voplpack2glb", js.FuncOf(voplpack2glb))
	js.Global().Set("unpackVoplpack", js.FuncOf(unpackVoplpack))
	select {}
}
