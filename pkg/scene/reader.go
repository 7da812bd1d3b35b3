package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ErrUnknownKeyword is returned for a line whose keyword is not recognized
var ErrUnknownKeyword = errors.New("unknown keyword")

const zeroLength = 1e-12

// Keywords that may appear inside a material block without ending it
var blockKeywords = map[string]bool{
	"sphere":   true,
	"cylinder": true,
	"f":        true,
	"v":        true,
	"vn":       true,
	"vt":       true,
	"texture":  true,
	"bump":     true,
	"mesh":     true,
}

// faceVertex is one corner of an f statement; indices are 1-based, 0 is absent
type faceVertex struct {
	v, t, n int
}

// face is a triangle whose indices are resolved once the whole file is read
type face struct {
	line      int
	corners   [3]faceVertex
	material  *material.Material
	texture   *material.ImageTexture
	normalMap *material.NormalMap
	mesh      int // Index into parser.meshes, -1 for a standalone triangle
}

type meshBlock struct {
	line   int
	levels int
}

// parser holds state while reading a scene description
type parser struct {
	scene  *Scene
	file   string
	dir    string
	logger core.Logger
	line   int

	seen map[string]bool

	// Current material block
	material  *material.Material
	texture   *material.ImageTexture
	normalMap *material.NormalMap

	vertices []core.Vec3
	normals  []core.Vec3
	uvs      []core.Vec3
	faces    []face

	meshes []meshBlock
	mesh   int // Open mesh block, -1 when none
}

// LoadScene reads a scene description from filename. Texture and bump
// files are resolved relative to the scene file's directory.
func LoadScene(filename string, logger core.Logger) (*Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	return readScene(file, filename, filepath.Dir(filename), logger)
}

// ReadScene parses a scene description from r. dir is the base for relative
// texture and bump paths.
func ReadScene(r io.Reader, dir string, logger core.Logger) (*Scene, error) {
	return readScene(r, "<scene>", dir, logger)
}

func readScene(r io.Reader, name, dir string, logger core.Logger) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	p := &parser{
		scene:  New(),
		file:   name,
		dir:    dir,
		logger: logger,
		seen:   make(map[string]bool),
		mesh:   -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", p.file, p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.file, err)
	}

	if err := p.finalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.file, err)
	}
	return p.scene, nil
}

func (p *parser) processLine(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	keyword := tokens[0]
	if strings.HasPrefix(keyword, "//") {
		p.logger.Debugf("%s:%d: skipping comment", p.file, p.line)
		return nil
	}

	if !blockKeywords[keyword] {
		p.material = nil
		p.texture = nil
		p.normalMap = nil
	}

	args := tokens[1:]
	switch keyword {
	case "eye":
		return p.setOnce(keyword, func() (err error) {
			p.scene.Eye, err = parseVec(args, 3)
			return err
		})
	case "viewdir":
		return p.setOnce(keyword, func() (err error) {
			p.scene.View, err = parseDirection(args)
			return err
		})
	case "updir":
		return p.setOnce(keyword, func() (err error) {
			p.scene.Up, err = parseDirection(args)
			return err
		})
	case "hfov":
		return p.setOnce(keyword, func() error { return p.parseHFov(args) })
	case "imsize":
		return p.setOnce(keyword, func() error { return p.parseImageSize(args) })
	case "bkgcolor":
		return p.setOnce(keyword, func() error { return p.parseBackground(args) })
	case "depthcueing":
		return p.setOnce(keyword, func() error { return p.parseDepthCue(args) })
	case "projection":
		return p.parseProjection(args)
	case "threadcount":
		return p.setOnce(keyword, func() error { return p.parseThreads(args) })
	case "mtlcolor":
		return p.parseMaterial(args)
	case "light":
		return p.parseLight(args)
	case "attlight":
		return p.parseAttenuatedLight(args)
	case "sphere":
		return p.parseSphere(args)
	case "cylinder":
		return p.parseCylinder(args)
	case "v":
		v, err := parseVec(args, 3)
		p.vertices = append(p.vertices, v)
		return err
	case "vn":
		n, err := parseVec(args, 3)
		p.normals = append(p.normals, n)
		return err
	case "vt":
		uv, err := parseVec(args, 2)
		p.uvs = append(p.uvs, uv)
		return err
	case "f":
		return p.parseFace(args)
	case "texture":
		return p.parseTexture(args)
	case "bump":
		return p.parseBump(args)
	case "mesh":
		return p.parseMesh(args)
	}
	return fmt.Errorf("%w %q", ErrUnknownKeyword, keyword)
}

// setOnce runs set and warns when keyword overrides an earlier value
func (p *parser) setOnce(keyword string, set func() error) error {
	if p.seen[keyword] {
		p.logger.Warningf("%s:%d: %s overrides an earlier value", p.file, p.line, keyword)
	}
	if err := set(); err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	p.seen[keyword] = true
	return nil
}

func (p *parser) parseHFov(args []string) error {
	values, err := parseFloats(args, 1)
	if err != nil {
		return err
	}
	if values[0] <= 0 || values[0] >= 180 {
		return fmt.Errorf("%w: %g must lie in (0, 180)", ErrInvalidArgument, values[0])
	}
	p.scene.HFov = values[0]
	return nil
}

func (p *parser) parseImageSize(args []string) error {
	values, err := parseFloats(args, 2)
	if err != nil {
		return err
	}
	w, h := int(math.Round(values[0])), int(math.Round(values[1]))
	if w < 1 || h < 1 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidArgument, w, h)
	}
	p.scene.Width, p.scene.Height = w, h
	return nil
}

func (p *parser) parseBackground(args []string) error {
	values, err := parseFloats(args, 4)
	if err != nil {
		return err
	}
	color, err := unitColor(values[:3])
	if err != nil {
		return err
	}
	if values[3] <= 0 {
		return fmt.Errorf("%w: eta %g must be positive", ErrInvalidArgument, values[3])
	}
	p.scene.BackgroundColor = color
	p.scene.BackgroundEta = values[3]
	return nil
}

func (p *parser) parseDepthCue(args []string) error {
	values, err := parseFloats(args, 7)
	if err != nil {
		return err
	}
	color, err := unitColor(values[:3])
	if err != nil {
		return err
	}
	cue := &DepthCue{
		Color: color,
		AMax:  values[3],
		AMin:  values[4],
		DMax:  values[5],
		DMin:  values[6],
	}
	if cue.AMin < 0 || cue.AMax > 1 || cue.AMin > cue.AMax {
		return fmt.Errorf("%w: alpha range [%g, %g]", ErrInvalidArgument, cue.AMin, cue.AMax)
	}
	if cue.DMin < 0 || cue.DMax <= cue.DMin {
		return fmt.Errorf("%w: distance range [%g, %g]", ErrInvalidArgument, cue.DMin, cue.DMax)
	}
	p.scene.DepthCue = cue
	return nil
}

func (p *parser) parseProjection(args []string) error {
	if len(args) != 1 || args[0] != "parallel" {
		return fmt.Errorf("projection: %w: expected \"parallel\"", ErrInvalidArgument)
	}
	p.scene.Parallel = true
	return nil
}

func (p *parser) parseThreads(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected 1 value, got %d", ErrInvalidArgument, len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("%w: thread count %q", ErrInvalidArgument, args[0])
	}
	p.scene.Threads = n
	return nil
}

// parseMaterial reads Od Os ka kd ks n alpha eta, with alpha either a single
// value or an RGB triple that enables Beer absorption
func (p *parser) parseMaterial(args []string) error {
	if len(args) != 12 && len(args) != 14 {
		return fmt.Errorf("mtlcolor: %w: expected 12 or 14 values, got %d", ErrInvalidArgument, len(args))
	}
	values, err := parseFloats(args, len(args))
	if err != nil {
		return fmt.Errorf("mtlcolor: %w", err)
	}

	diffuse, err := unitColor(values[0:3])
	if err != nil {
		return fmt.Errorf("mtlcolor: %w", err)
	}
	specular, err := unitColor(values[3:6])
	if err != nil {
		return fmt.Errorf("mtlcolor: %w", err)
	}
	ka, kd, ks, n := values[6], values[7], values[8], values[9]

	var mat *material.Material
	if len(args) == 14 {
		alpha := core.NewVec3(values[10], values[11], values[12])
		mat = material.NewAbsorbing(diffuse, specular, ka, kd, ks, n, alpha, values[13])
	} else {
		mat = material.NewTransparent(diffuse, specular, ka, kd, ks, n, values[10], values[11])
	}
	if err := mat.Validate(); err != nil {
		return fmt.Errorf("mtlcolor: %w", err)
	}

	p.material = mat
	return nil
}

func (p *parser) parseLight(args []string) error {
	values, err := parseFloats(args, 7)
	if err != nil {
		return fmt.Errorf("light: %w", err)
	}
	color, err := lightColor(values[4:7])
	if err != nil {
		return fmt.Errorf("light: %w", err)
	}
	v := core.NewVec3(values[0], values[1], values[2])

	switch values[3] {
	case 0:
		if v.IsZero(zeroLength) {
			return fmt.Errorf("light: %w: directional light needs a direction", ErrInvalidArgument)
		}
		p.scene.AddLight(lights.NewDirectional(v, color))
	case 1:
		p.scene.AddLight(lights.NewPoint(v, color))
	default:
		return fmt.Errorf("light: %w: w must be 0 or 1, got %g", ErrInvalidArgument, values[3])
	}
	return nil
}

func (p *parser) parseAttenuatedLight(args []string) error {
	values, err := parseFloats(args, 10)
	if err != nil {
		return fmt.Errorf("attlight: %w", err)
	}
	if values[3] != 1 {
		return fmt.Errorf("attlight: %w: only point lights attenuate, w must be 1", ErrInvalidArgument)
	}
	color, err := lightColor(values[4:7])
	if err != nil {
		return fmt.Errorf("attlight: %w", err)
	}
	c1, c2, c3 := values[7], values[8], values[9]
	if c1 < 0 || c2 < 0 || c3 < 0 || c1+c2+c3 == 0 {
		return fmt.Errorf("attlight: %w: falloff %g %g %g", ErrInvalidArgument, c1, c2, c3)
	}

	position := core.NewVec3(values[0], values[1], values[2])
	p.scene.AddLight(lights.NewAttenuatedPoint(position, color, c1, c2, c3))
	return nil
}

func (p *parser) parseSphere(args []string) error {
	if p.material == nil {
		return fmt.Errorf("sphere: %w", ErrNoMaterial)
	}
	values, err := parseFloats(args, 4)
	if err != nil {
		return fmt.Errorf("sphere: %w", err)
	}
	if values[3] <= zeroLength {
		return fmt.Errorf("sphere: %w: radius %g", ErrInvalidArgument, values[3])
	}

	sphere := geometry.NewSphere(core.NewVec3(values[0], values[1], values[2]), values[3], p.material)
	sphere.Texture = p.texture
	sphere.NormalMap = p.normalMap
	p.scene.Add(sphere)
	return nil
}

func (p *parser) parseCylinder(args []string) error {
	if p.material == nil {
		return fmt.Errorf("cylinder: %w", ErrNoMaterial)
	}
	values, err := parseFloats(args, 8)
	if err != nil {
		return fmt.Errorf("cylinder: %w", err)
	}
	direction := core.NewVec3(values[3], values[4], values[5])
	radius, length := values[6], values[7]
	if direction.IsZero(zeroLength) {
		return fmt.Errorf("cylinder: %w: zero axis", ErrInvalidArgument)
	}
	if radius <= zeroLength || length <= zeroLength {
		return fmt.Errorf("cylinder: %w: radius %g length %g", ErrInvalidArgument, radius, length)
	}

	cylinder := geometry.NewCylinder(core.NewVec3(values[0], values[1], values[2]), direction, radius, length, p.material)
	cylinder.Texture = p.texture
	cylinder.NormalMap = p.normalMap
	p.scene.Add(cylinder)
	return nil
}

// parseFace reads a triangle or a quad. Every corner must use the same form:
// a, a//n, a/t or a/t/n.
func (p *parser) parseFace(args []string) error {
	if p.material == nil {
		return fmt.Errorf("f: %w", ErrNoMaterial)
	}
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("f: %w: expected 3 or 4 vertices, got %d", ErrInvalidArgument, len(args))
	}

	corners := make([]faceVertex, len(args))
	for i, arg := range args {
		c, err := parseCorner(arg)
		if err != nil {
			return fmt.Errorf("f: %w", err)
		}
		if i > 0 && ((c.t == 0) != (corners[0].t == 0) || (c.n == 0) != (corners[0].n == 0)) {
			return fmt.Errorf("f: %w: mixed vertex forms", ErrInvalidArgument)
		}
		corners[i] = c
	}

	p.addFace([3]faceVertex{corners[0], corners[1], corners[2]})
	if len(corners) == 4 {
		p.addFace([3]faceVertex{corners[2], corners[3], corners[0]})
	}
	return nil
}

func (p *parser) addFace(corners [3]faceVertex) {
	p.faces = append(p.faces, face{
		line:      p.line,
		corners:   corners,
		material:  p.material,
		texture:   p.texture,
		normalMap: p.normalMap,
		mesh:      p.mesh,
	})
}

func parseCorner(token string) (faceVertex, error) {
	parts := strings.Split(token, "/")
	if len(parts) > 3 || (len(parts) == 3 && parts[1] == "" && parts[2] == "") {
		return faceVertex{}, fmt.Errorf("%w: vertex %q", ErrInvalidArgument, token)
	}

	indices := make([]int, 3)
	for i, part := range parts {
		if part == "" {
			if i == 1 && len(parts) == 3 {
				continue // a//n
			}
			return faceVertex{}, fmt.Errorf("%w: vertex %q", ErrInvalidArgument, token)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return faceVertex{}, fmt.Errorf("%w: vertex %q", ErrBadIndex, token)
		}
		indices[i] = n
	}
	return faceVertex{v: indices[0], t: indices[1], n: indices[2]}, nil
}

func (p *parser) parseTexture(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("texture: %w: expected a file name", ErrInvalidArgument)
	}
	texture, err := loaders.LoadTexture(p.resolve(args[0]))
	if err != nil {
		return fmt.Errorf("texture: %w", err)
	}
	p.texture = texture
	return nil
}

func (p *parser) parseBump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("bump: %w: expected a file name", ErrInvalidArgument)
	}
	normalMap, err := loaders.LoadNormalMap(p.resolve(args[0]))
	if err != nil {
		return fmt.Errorf("bump: %w", err)
	}
	p.normalMap = normalMap
	return nil
}

func (p *parser) resolve(name string) string {
	if filepath.IsAbs(name) || p.dir == "" {
		return name
	}
	return filepath.Join(p.dir, name)
}

// parseMesh opens or closes a block of faces that share one BVH
func (p *parser) parseMesh(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("mesh: %w: expected start [levels] or stop", ErrInvalidArgument)
	}

	switch args[0] {
	case "start":
		if p.mesh >= 0 {
			return fmt.Errorf("mesh: %w: nested mesh start", ErrInvalidArgument)
		}
		levels := geometry.DefaultBVHLevels
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("mesh: %w: levels %q", ErrInvalidArgument, args[1])
			}
			levels = n
		}
		p.meshes = append(p.meshes, meshBlock{line: p.line, levels: levels})
		p.mesh = len(p.meshes) - 1
	case "stop":
		if len(args) != 1 {
			return fmt.Errorf("mesh: %w: stop takes no arguments", ErrInvalidArgument)
		}
		if p.mesh < 0 {
			return fmt.Errorf("mesh: %w: stop without start", ErrInvalidArgument)
		}
		p.mesh = -1
	default:
		return fmt.Errorf("mesh: %w: %q", ErrInvalidArgument, args[0])
	}
	return nil
}

// finalize checks required keywords and builds triangles and meshes
func (p *parser) finalize() error {
	var missing []string
	for _, keyword := range []string{"imsize", "eye", "viewdir", "hfov", "updir"} {
		if !p.seen[keyword] {
			missing = append(missing, keyword)
		}
	}
	if !p.seen["bkgcolor"] && !p.seen["depthcueing"] {
		missing = append(missing, "bkgcolor")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKeyword, strings.Join(missing, ", "))
	}

	if p.mesh >= 0 {
		return fmt.Errorf("line %d: %w", p.meshes[p.mesh].line, ErrUnclosedMesh)
	}

	groups := make([][]*geometry.Triangle, len(p.meshes))
	materials := make([]*material.Material, len(p.meshes))
	untextured := 0
	for _, f := range p.faces {
		tri, err := p.buildTriangle(f)
		if err != nil {
			return fmt.Errorf("line %d: %w", f.line, err)
		}
		if f.corners[0].t == 0 && (f.texture != nil || f.normalMap != nil) {
			untextured++
		}
		if f.mesh < 0 {
			p.scene.Add(tri)
			continue
		}
		if materials[f.mesh] == nil {
			materials[f.mesh] = f.material
		}
		groups[f.mesh] = append(groups[f.mesh], tri)
	}
	if untextured > 0 {
		p.logger.Warningf("%s: %d faces have a texture or bump map but no texture coordinates", p.file, untextured)
	}

	for i, tris := range groups {
		if len(tris) == 0 {
			p.logger.Warningf("%s:%d: empty mesh ignored", p.file, p.meshes[i].line)
			continue
		}
		mesh, err := geometry.NewTriangleMesh(tris, p.meshes[i].levels, materials[i])
		if err != nil {
			return fmt.Errorf("line %d: %w", p.meshes[i].line, err)
		}
		stats := mesh.BVH().Stats()
		p.logger.Debugf("%s:%d: mesh of %d triangles, BVH %d nodes, %d leaves, largest leaf %d",
			p.file, p.meshes[i].line, len(tris), stats.Nodes, stats.Leaves, stats.MaxLeafSize)
		p.scene.Add(mesh)
	}

	return p.scene.Validate()
}

func (p *parser) buildTriangle(f face) (*geometry.Triangle, error) {
	var verts, normals, uvs [3]core.Vec3
	for i, c := range f.corners {
		v, err := lookup(p.vertices, c.v, "vertex")
		if err != nil {
			return nil, err
		}
		verts[i] = v

		if c.n != 0 {
			if normals[i], err = lookup(p.normals, c.n, "normal"); err != nil {
				return nil, err
			}
		}
		if c.t != 0 {
			if uvs[i], err = lookup(p.uvs, c.t, "texture coordinate"); err != nil {
				return nil, err
			}
		}
	}

	opts := geometry.TriangleOptions{}
	if f.corners[0].n != 0 {
		opts.Normals = &normals
	}
	if f.corners[0].t != 0 {
		opts.UVs = &uvs
		opts.Texture = f.texture
		opts.NormalMap = f.normalMap
	}
	return geometry.NewTriangleWithOptions(verts[0], verts[1], verts[2], f.material, opts), nil
}

func lookup(values []core.Vec3, index int, kind string) (core.Vec3, error) {
	if index < 1 || index > len(values) {
		return core.Vec3{}, fmt.Errorf("%w: %s %d of %d", ErrBadIndex, kind, index, len(values))
	}
	return values[index-1], nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidArgument, n, len(args))
	}
	values := make([]float64, n)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, arg)
		}
		values[i] = v
	}
	return values, nil
}

// parseVec reads n components into a vector, leaving the rest zero
func parseVec(args []string, n int) (core.Vec3, error) {
	values, err := parseFloats(args, n)
	if err != nil {
		return core.Vec3{}, err
	}
	var c [3]float64
	copy(c[:], values)
	return core.NewVec3(c[0], c[1], c[2]), nil
}

func parseDirection(args []string) (core.Vec3, error) {
	v, err := parseVec(args, 3)
	if err != nil {
		return v, err
	}
	if v.IsZero(zeroLength) {
		return v, fmt.Errorf("%w: zero direction", ErrInvalidArgument)
	}
	return v, nil
}

func unitColor(values []float64) (core.Vec3, error) {
	for _, v := range values {
		if v < 0 || v > 1 {
			return core.Vec3{}, fmt.Errorf("%w: color component %g outside [0, 1]", ErrInvalidArgument, v)
		}
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

// lightColor accepts intensities above 1
func lightColor(values []float64) (core.Vec3, error) {
	for _, v := range values {
		if v < 0 {
			return core.Vec3{}, fmt.Errorf("%w: negative light intensity %g", ErrInvalidArgument, v)
		}
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}
