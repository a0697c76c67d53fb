package mesh

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// ErrNoMeshes is returned when a glTF document contains no triangle primitives.
var ErrNoMeshes = errors.New("gltf document has no triangle meshes")

// LoadGLTF reads a .gltf or .glb file and flattens every triangle primitive
// reachable from the default scene into one mesh in scene space.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return FromGLTF(doc)
}

// FromGLTF flattens a parsed glTF document.
func FromGLTF(doc *gltf.Document) (*Mesh, error) {
	out := &Mesh{}
	visited := 0

	var visit func(node uint32, parent math.Mat4) error
	visit = func(node uint32, parent math.Mat4) error {
		if int(node) >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", node)
		}
		n := doc.Nodes[node]
		world := parent.Mul(nodeMatrix(n))
		if n.Mesh != nil {
			if err := appendMesh(out, doc, *n.Mesh, world); err != nil {
				return fmt.Errorf("node %d: %w", node, err)
			}
			visited++
		}
		for _, child := range n.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	roots := sceneRoots(doc)
	if roots == nil {
		// No scene graph: take meshes as they are.
		for i := range doc.Meshes {
			if err := appendMesh(out, doc, uint32(i), math.Identity()); err != nil {
				return nil, err
			}
			visited++
		}
	}
	for _, r := range roots {
		if err := visit(r, math.Identity()); err != nil {
			return nil, err
		}
	}

	if visited == 0 || out.TriangleCount() == 0 {
		return nil, ErrNoMeshes
	}
	return out, nil
}

func sceneRoots(doc *gltf.Document) []uint32 {
	if len(doc.Scenes) == 0 {
		return nil
	}
	scene := 0
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		scene = int(*doc.Scene)
	}
	if len(doc.Scenes[scene].Nodes) == 0 {
		return nil
	}
	return doc.Scenes[scene].Nodes
}

func nodeMatrix(n *gltf.Node) math.Mat4 {
	var m math.Mat4
	src := n.MatrixOrDefault()
	identity := true
	for i := range m {
		m[i] = float32(src[i])
		if m[i] != math.Identity()[i] {
			identity = false
		}
	}
	if !identity {
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.FromTRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

func appendMesh(out *Mesh, doc *gltf.Document, meshIndex uint32, world math.Mat4) error {
	if int(meshIndex) >= len(doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", meshIndex)
	}
	for pi, prim := range doc.Meshes[meshIndex].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		part, err := readPrimitive(doc, prim)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", meshIndex, pi, err)
		}
		for i, p := range part.Positions {
			part.Positions[i] = world.TransformVec3(p)
		}
		for i, n := range part.Normals {
			part.Normals[i] = world.TransformDirection(n).Normalize()
		}
		out.Append(part)
	}
	return nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	part := &Mesh{Positions: make([]math.Vec3, len(positions))}
	for i, p := range positions {
		part.Positions[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		part.Normals = make([]math.Vec3, len(normals))
		for i, n := range normals {
			part.Normals[i] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
		part.UVs = make([]math.Vec2, len(uvs))
		for i, uv := range uvs {
			// glTF puts the UV origin top-left.
			part.UVs[i] = math.Vec2{X: uv[0], Y: 1 - uv[1]}
		}
	}

	if prim.Indices != nil {
		part.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		part.Indices = make([]uint32, len(positions))
		for i := range part.Indices {
			part.Indices[i] = uint32(i)
		}
	}

	if err := part.Validate(); err != nil {
		return nil, err
	}
	return part, nil
}
