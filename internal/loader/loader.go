package loader

import (
	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrNoGeometry is returned for files that parse but contain no faces.
var ErrNoGeometry = errors.New("model has no geometry")

// LoadModel reads an OBJ file into a node tree: one root named after the file
// and one child mesh node per object/group.
func LoadModel(filename string) (*renderer.Node, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	mtlResolver := func(lib string) map[string]*renderer.Material {
		return LoadMaterials(filepath.Join(filepath.Dir(filename), lib))
	}
	root, err := parseOBJ(file, name, mtlResolver)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	root.Traverse(func(n *renderer.Node) {
		if n.Mesh != nil {
			n.Mesh.SourcePath = filename
		}
	})
	return root, nil
}

// ParseOBJ parses OBJ text without material libraries.
func ParseOBJ(r io.Reader, name string) (*renderer.Node, error) {
	return parseOBJ(r, name, nil)
}

// group accumulates the faces of one "o"/"g" section, remapping global OBJ
// vertex indices to mesh-local ones.
type group struct {
	name     string
	material *renderer.Material
	vertices []mgl32.Vec3
	faces    []int32
	remap    map[int32]int32
}

func newGroup(name string) *group {
	return &group{name: name, remap: make(map[int32]int32)}
}

func (g *group) addVertex(global int32, positions []mgl32.Vec3) int32 {
	if local, ok := g.remap[global]; ok {
		return local
	}
	local := int32(len(g.vertices))
	g.vertices = append(g.vertices, positions[global])
	g.remap[global] = local
	return local
}

func parseOBJ(r io.Reader, name string, mtl func(string) map[string]*renderer.Material) (*renderer.Node, error) {
	var positions []mgl32.Vec3
	var groups []*group
	materials := map[string]*renderer.Material{}
	current := newGroup(name)
	var currentMaterial *renderer.Material

	startGroup := func(groupName string) {
		if len(current.faces) > 0 {
			groups = append(groups, current)
		}
		current = newGroup(groupName)
		current.material = currentMaterial
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			vertex, err := parseVertex(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, vertex)
		case "o", "g":
			groupName := name
			if len(parts) > 1 {
				groupName = strings.Join(parts[1:], " ")
			}
			startGroup(groupName)
		case "f":
			indices, err := parseFace(parts[1:], len(positions))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			for _, idx := range indices {
				current.faces = append(current.faces, current.addVertex(idx, positions))
			}
		case "mtllib":
			if mtl != nil && len(parts) >= 2 {
				for k, v := range mtl(parts[1]) {
					materials[k] = v
				}
			}
		case "usemtl":
			if len(parts) >= 2 {
				if material, ok := materials[parts[1]]; ok {
					currentMaterial = material
					if len(current.faces) == 0 {
						current.material = material
					}
				} else {
					logger.Log.Debug("Material not found", zap.String("material", parts[1]))
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current.faces) > 0 {
		groups = append(groups, current)
	}
	if len(groups) == 0 {
		return nil, ErrNoGeometry
	}

	root := renderer.NewNode(name)
	for _, g := range groups {
		mesh := renderer.CreateMesh(g.vertices, g.faces)
		if g.material != nil {
			mat := *g.material
			mesh.Material = &mat
		}
		root.Add(renderer.NewMeshNode(g.name, mesh))
	}

	logger.Log.Debug("Model parsed",
		zap.String("name", name),
		zap.Int("groups", len(groups)),
		zap.Int("vertices", len(positions)))

	return root, nil
}

// LoadMaterials loads material properties from a .mtl file. A missing file
// yields an empty set.
func LoadMaterials(filename string) map[string]*renderer.Material {
	file, err := os.Open(filename)
	if err != nil {
		logger.Log.Warn("Error opening material file", zap.String("path", filename), zap.Error(err))
		return map[string]*renderer.Material{}
	}
	defer file.Close()

	var currentMaterial *renderer.Material
	materials := make(map[string]*renderer.Material)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				continue
			}
			currentMaterial = &renderer.Material{
				Name:         fields[1],
				DiffuseColor: renderer.DefaultMaterial.DiffuseColor,
				Alpha:        1.0, // Opaque by default
			}
			materials[fields[1]] = currentMaterial
		case "Kd": // Diffuse color
			if currentMaterial != nil && len(fields) == 4 {
				currentMaterial.DiffuseColor = parseColor(fields[1:])
			}
		case "d": // Dissolve (alpha/opacity)
			if currentMaterial != nil && len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 32); err == nil {
					currentMaterial.Alpha = float32(v)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Log.Warn("Error reading material file", zap.String("path", filename), zap.Error(err))
	}

	return materials
}

// parseColor parses RGB color components, defaulting bad components to 0.
func parseColor(fields []string) [3]float32 {
	var color [3]float32
	for i, field := range fields {
		if val, err := strconv.ParseFloat(field, 32); err == nil {
			color[i] = float32(val)
		}
	}
	return color
}

func parseVertex(parts []string) (mgl32.Vec3, error) {
	if len(parts) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("vertex needs 3 components, got %d", len(parts))
	}
	var vertex mgl32.Vec3
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("invalid vertex value %v: %w", parts[i], err)
		}
		vertex[i] = float32(val)
	}
	return vertex, nil
}

// parseFace returns zero-based position indices of the face, fan-triangulated.
// Negative OBJ indices are relative to the vertices read so far.
func parseFace(parts []string, vertexCount int) ([]int32, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(parts))
	}
	face := make([]int32, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")
		idx, err := strconv.ParseInt(vals[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex index %v: %w", vals[0], err)
		}
		if idx < 0 {
			idx = int64(vertexCount) + idx + 1
		}
		if idx < 1 || idx > int64(vertexCount) {
			return nil, fmt.Errorf("vertex index %d out of range", idx)
		}
		face = append(face, int32(idx-1)) // .obj indices start at 1, not 0
	}

	triangulated := make([]int32, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		triangulated = append(triangulated, face[0], face[i], face[i+1])
	}
	return triangulated, nil
}
