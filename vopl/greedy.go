package vopl

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/goocy/hypermaze/voxel"
)

// Vertex is one mesh corner. Color is a Palette index.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    uint8
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

type faceDef struct {
	normal mgl32.Vec3
	perp   int // axis the face looks along
	u, v   int // in-plane axes
}

var faces = []faceDef{
	{mgl32.Vec3{1, 0, 0}, 0, 1, 2},
	{mgl32.Vec3{-1, 0, 0}, 0, 1, 2},
	{mgl32.Vec3{0, 1, 0}, 1, 0, 2},
	{mgl32.Vec3{0, -1, 0}, 1, 0, 2},
	{mgl32.Vec3{0, 0, 1}, 2, 0, 1},
	{mgl32.Vec3{0, 0, -1}, 2, 0, 1},
}

func axisVec(axis int, length float32) mgl32.Vec3 {
	var v mgl32.Vec3
	v[axis] = length
	return v
}

func addQuad(mesh *Mesh, f faceDef, base mgl32.Vec3, du, dv mgl32.Vec3, color uint8) {
	verts := [4]mgl32.Vec3{base, base.Add(du), base.Add(du).Add(dv), base.Add(dv)}
	if verts[1].Sub(verts[0]).Cross(verts[2].Sub(verts[0])).Dot(f.normal) < 0 {
		verts[1], verts[3] = verts[3], verts[1]
	}
	first := uint32(len(mesh.Vertices))
	for _, p := range verts {
		mesh.Vertices = append(mesh.Vertices, Vertex{Position: p, Normal: f.normal, Color: color})
	}
	mesh.Indices = append(mesh.Indices, first, first+1, first+2, first, first+2, first+3)
}

// GenerateMesh builds a greedy surface mesh of a rank 1..3 volume: exposed
// faces of equal material are merged into maximal rectangles per slice.
func GenerateMesh(vol *voxel.Volume) (*Mesh, error) {
	v, err := newView(vol)
	if err != nil {
		return nil, err
	}
	mesh := &Mesh{}
	colorAt := func(p [3]int) uint8 {
		if !v.at(p[0], p[1], p[2]) {
			return MaterialEmpty
		}
		return v.material(p[1])
	}

	for _, f := range faces {
		step := int(f.normal[f.perp])
		nu, nv := v.size[f.u], v.size[f.v]
		mask := make([]uint8, nu*nv)
		done := make([]bool, nu*nv)

		for p := range v.size[f.perp] {
			clear(done)
			for u := range nu {
				for w := range nv {
					var pos [3]int
					pos[f.perp], pos[f.u], pos[f.v] = p, u, w
					c := colorAt(pos)
					if c != MaterialEmpty {
						pos[f.perp] += step
						if colorAt(pos) != MaterialEmpty {
							c = MaterialEmpty
						}
					}
					mask[u*nv+w] = c
				}
			}

			for u := range nu {
				for w := 0; w < nv; {
					c := mask[u*nv+w]
					if c == MaterialEmpty || done[u*nv+w] {
						w++
						continue
					}
					width := 1
					for w+width < nv && mask[u*nv+w+width] == c && !done[u*nv+w+width] {
						width++
					}
					height := 1
				grow:
					for u+height < nu {
						for k := w; k < w+width; k++ {
							if mask[(u+height)*nv+k] != c || done[(u+height)*nv+k] {
								break grow
							}
						}
						height++
					}
					for hu := u; hu < u+height; hu++ {
						for hw := w; hw < w+width; hw++ {
							done[hu*nv+hw] = true
						}
					}

					var base mgl32.Vec3
					base[f.perp] = float32(p)
					if step > 0 {
						base[f.perp]++
					}
					base[f.u] = float32(u)
					base[f.v] = float32(w)
					addQuad(mesh, f, base, axisVec(f.u, float32(height)), axisVec(f.v, float32(width)), c)
					w += width
				}
			}
		}
	}
	return mesh, nil
}
