// Package api offers in-memory conversions between maze configs, rendered
// volumes, .voplpack containers and GLB meshes.
package api

import (
	"bytes"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/goocy/hypermaze/config"
	"github.com/goocy/hypermaze/maze"
	"github.com/goocy/hypermaze/vopl"
	"github.com/goocy/hypermaze/voxel"
)

// GenerateFromConfig parses a JSON config and runs the generator.
func GenerateFromConfig(configJSON []byte, log *slog.Logger) (*maze.Result, *config.Config, error) {
	cfg, err := config.Parse(configJSON)
	if err != nil {
		return nil, nil, err
	}
	res, err := cfg.Generate(cfg.Rand(), log)
	if err != nil {
		return nil, nil, err
	}
	return res, cfg, nil
}

// ConfigToPack generates a maze and returns its volume as a .voplpack.
func ConfigToPack(configJSON []byte, log *slog.Logger) ([]byte, error) {
	res, cfg, err := GenerateFromConfig(configJSON, log)
	if err != nil {
		return nil, err
	}
	layout, comp, err := cfg.Pack()
	if err != nil {
		return nil, err
	}
	return VolumeToPack(res.Volume, layout, comp)
}

// ConfigToGLB generates a maze and returns its volume as a binary glTF.
func ConfigToGLB(configJSON []byte, log *slog.Logger) ([]byte, error) {
	res, _, err := GenerateFromConfig(configJSON, log)
	if err != nil {
		return nil, err
	}
	return VolumeToGLB(res.Volume)
}

// VolumeToPack encodes a rank 1..3 volume as a .voplpack.
func VolumeToPack(vol *voxel.Volume, layout vopl.Layout, comp vopl.Compression) ([]byte, error) {
	if vol == nil {
		return nil, errors.New("no volume to pack")
	}
	return vopl.PackVolume(vol, layout, comp)
}

// PackToVolume decodes a .voplpack written by VolumeToPack.
func PackToVolume(packBytes []byte) (*voxel.Volume, error) {
	return vopl.UnpackVolume(packBytes)
}

// UnpackToMemory returns entry name -> standalone .vopl bytes for every
// chunk in a .voplpack.
func UnpackToMemory(packBytes []byte) (map[string][]byte, error) {
	pack, _, err := vopl.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(pack.Entries))
	for i, e := range pack.Entries {
		if pack.IsChunk(i) {
			out[e.Name] = pack.File(i)
		}
	}
	return out, nil
}

// VolumeToGLB greedy-meshes a rank 1..3 volume into a single-node binary
// glTF with per-vertex colors from the palette.
func VolumeToGLB(vol *voxel.Volume) ([]byte, error) {
	if vol == nil {
		return nil, errors.New("no volume to mesh")
	}
	mesh, err := vopl.GenerateMesh(vol)
	if err != nil {
		return nil, err
	}
	if len(mesh.Vertices) == 0 {
		return nil, errors.New("volume has no solid voxels")
	}

	colors := make([][4]float32, len(vopl.Palette))
	for i, hex := range vopl.Palette {
		if colors[i], err = vopl.ParseHexColor(hex); err != nil {
			return nil, err
		}
	}
	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	vertexColors := make([][4]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32(v.Position)
		normals[i] = [3]float32(v.Normal)
		vertexColors[i] = colors[v.Color]
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "hypermaze"
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: modeler.WritePosition(doc, positions),
			gltf.NORMAL:   modeler.WriteNormal(doc, normals),
			gltf.COLOR_0:  modeler.WriteColor(doc, vertexColors),
		},
		Indices:  gltf.Index(modeler.WriteIndices(doc, mesh.Indices)),
		Material: gltf.Index(0),
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "maze",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)},
		AlphaMode:            gltf.AlphaOpaque,
	}}
	doc.Meshes = []*gltf.Mesh{{Name: "Maze", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "Maze", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode glb")
	}
	return out.Bytes(), nil
}
