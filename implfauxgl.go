package vr

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"math/rand"
	"sync"
)

//-----------------------------------------------------------------------------
// SCENE
//-----------------------------------------------------------------------------

// Scene is what FauxglRenderer draws: a pre-compiled triangle mesh and how to shade it.
type Scene struct {
	Mesh *fauxgl.Mesh
	// ColorMode 0: constant color with basic shading (1 light and no projected shadows), 1: normal XYZ as RGB,
	// 2: 1 but in wireframe mode
	ColorMode    int
	SurfaceColor color.Color
}

// NewMeshScene meshes the SDF once (this may take a while) into a ready to render scene.
// Progress is logged to logger (log.Default() if nil).
func NewMeshScene(s sdf.SDF3, meshGenerator render.Render3, smoothNormalsRadians float64, logger *log.Logger) *Scene {
	if logger == nil {
		logger = log.Default()
	}
	logger.Println("Rendering 3D mesh...")
	var triangles []*fauxgl.Triangle
	triChan := make(chan []*render.Triangle3)
	go func() {
		meshGenerator.Render(s, triChan)
		close(triChan)
	}()
	for tris := range triChan {
		for _, tri := range tris {
			triangles = append(triangles, convertTriangle(tri))
		}
	}
	mesh := fauxgl.NewTriangleMesh(triangles)
	mesh.SmoothNormalsThreshold(smoothNormalsRadians)
	logger.Println("Mesh is ready:", len(triangles), "triangles")
	return &Scene{Mesh: mesh, SurfaceColor: color.RGBA{R: 0x44, G: 0x88, B: 0xcc, A: 255}}
}

// Scatter replaces the mesh with count randomly rotated copies of it, placed inside a cube of the given half-size.
func (sc *Scene) Scatter(count int, halfSize float64, rnd *rand.Rand) {
	scattered := fauxgl.NewEmptyMesh()
	for i := 0; i < count; i++ {
		instance := sc.Mesh.Copy()
		instance.Transform(fauxgl.Rotate(fauxgl.Vector{X: 1}, rnd.Float64()*2*math.Pi).
			Rotate(fauxgl.Vector{Y: 1}, rnd.Float64()*2*math.Pi).
			Translate(fauxgl.Vector{
				X: (rnd.Float64()*2 - 1) * halfSize,
				Y: (rnd.Float64()*2 - 1) * halfSize,
				Z: (rnd.Float64()*2 - 1) * halfSize,
			}))
		scattered.Add(instance)
	}
	sc.Mesh = scattered
}

//-----------------------------------------------------------------------------
// RENDERER
//-----------------------------------------------------------------------------

// FauxglRenderer is a software Renderer: each Render rasterizes the scene into the current viewport of a
// single framebuffer, clipped by the scissor rectangle while the scissor test is enabled.
type FauxglRenderer struct {
	framebufferLock *sync.RWMutex
	framebuffer     *image.NRGBA
	scaleFactor     float64
	viewport        image.Rectangle // Logical pixels
	scissor         image.Rectangle // Logical pixels
	scissorTest     bool
	clearColor      color.Color
	lightDir        v3.Vec
	lastContext     *fauxgl.Context
	logger          *log.Logger
}

// NewFauxglRenderer creates a renderer that clears every viewport to clearColor before drawing.
// Resizes are logged to logger (log.Default() if nil).
func NewFauxglRenderer(clearColor color.Color, logger *log.Logger) *FauxglRenderer {
	if logger == nil {
		logger = log.Default()
	}
	return &FauxglRenderer{
		framebufferLock: &sync.RWMutex{},
		framebuffer:     image.NewNRGBA(image.Rect(0, 0, 1, 1)),
		scaleFactor:     1,
		clearColor:      clearColor,
		lightDir:        v3.Vec{X: 0.25, Y: 0.5, Z: 1},
		logger:          logger,
	}
}

// SetSize reallocates the framebuffer for a surface of the given logical size.
func (r *FauxglRenderer) SetSize(width, height int, stereo bool, scaleFactor float64) {
	if !(scaleFactor > 0) {
		scaleFactor = 1
	}
	fbWidth, fbHeight := int(math.Round(float64(width)*scaleFactor)), int(math.Round(float64(height)*scaleFactor))
	if fbWidth < 1 {
		fbWidth = 1
	}
	if fbHeight < 1 {
		fbHeight = 1
	}
	r.logger.Println("Framebuffer resized to", fbWidth, "x", fbHeight, "stereo:", stereo)
	fb := image.NewNRGBA(image.Rect(0, 0, fbWidth, fbHeight))
	draw.Draw(fb, fb.Bounds(), image.NewUniform(r.clearColor), image.Point{}, draw.Src)
	r.framebufferLock.Lock()
	r.framebuffer = fb
	r.scaleFactor = scaleFactor
	r.framebufferLock.Unlock()
}

func (r *FauxglRenderer) SetViewport(x, y, width, height int) {
	r.viewport = image.Rect(x, y, x+width, y+height)
}

func (r *FauxglRenderer) SetScissor(x, y, width, height int) {
	r.scissor = image.Rect(x, y, x+width, y+height)
}

func (r *FauxglRenderer) EnableScissorTest(enabled bool) {
	r.scissorTest = enabled
}

// Render draws the scene (a *Scene, anything else is ignored) as seen from the camera into the viewport.
func (r *FauxglRenderer) Render(scene interface{}, camera Camera) {
	sc, ok := scene.(*Scene)
	if !ok || sc == nil || sc.Mesh == nil {
		return
	}
	dst := r.scaled(r.viewport)
	if dst.Empty() {
		return
	}
	if r.lastContext == nil || r.lastContext.Width != dst.Dx() || r.lastContext.Height != dst.Dy() {
		// Rebuild rendering context only when needed
		r.lastContext = fauxgl.NewContext(dst.Dx(), dst.Dy())
	} else {
		r.lastContext.ClearDepthBuffer()
	}
	r.lastContext.ClearColorBufferWith(fauxgl.MakeColor(r.clearColor))

	camMatrix := camera.ProjectionMatrix().Mul(camera.ViewMatrix())
	if sc.ColorMode == 0 {
		shader := fauxgl.NewPhongShader(camMatrix, toFauxglVector(r.lightDir.Normalize()), toFauxglVector(camera.Position()))
		if sc.SurfaceColor != nil {
			shader.ObjectColor = fauxgl.MakeColor(sc.SurfaceColor)
		}
		r.lastContext.Shader = shader
		r.lastContext.Wireframe = false
	} else {
		r.lastContext.Shader = &normalShader{camMatrix}
		r.lastContext.Wireframe = sc.ColorMode == 2
	}
	r.lastContext.DrawMesh(sc.Mesh) // This is already multithread
	img := r.lastContext.Image()

	clip := dst
	if r.scissorTest {
		clip = clip.Intersect(r.scaled(r.scissor))
	}
	r.framebufferLock.Lock()
	clip = clip.Intersect(r.framebuffer.Bounds())
	draw.Draw(r.framebuffer, clip, img, clip.Min.Sub(dst.Min), draw.Src)
	r.framebufferLock.Unlock()
}

// Framebuffer calls f with the last rendered frame (read-only, do not keep a reference to it).
func (r *FauxglRenderer) Framebuffer(f func(fb *image.NRGBA)) {
	r.framebufferLock.RLock()
	defer r.framebufferLock.RUnlock()
	f(r.framebuffer)
}

func (r *FauxglRenderer) scaled(rect image.Rectangle) image.Rectangle {
	s := r.scaleFactor
	return image.Rect(int(math.Round(float64(rect.Min.X)*s)), int(math.Round(float64(rect.Min.Y)*s)),
		int(math.Round(float64(rect.Max.X)*s)), int(math.Round(float64(rect.Max.Y)*s)))
}

func convertTriangle(tri *render.Triangle3) *fauxgl.Triangle {
	normalV := toFauxglVector(tri.Normal())
	return &fauxgl.Triangle{
		V1: fauxgl.Vertex{Position: toFauxglVector(tri.V[0]), Normal: normalV, Color: fauxgl.Gray(1)},
		V2: fauxgl.Vertex{Position: toFauxglVector(tri.V[1]), Normal: normalV, Color: fauxgl.Gray(1)},
		V3: fauxgl.Vertex{Position: toFauxglVector(tri.V[2]), Normal: normalV, Color: fauxgl.Gray(1)},
	}
}

// normalShader colors each fragment by its normal
type normalShader struct {
	Matrix fauxgl.Matrix
}

func (shader *normalShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *normalShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	return fauxgl.MakeColor(color.RGBA{
		R: uint8(math.Abs(v.Normal.X) * 255),
		G: uint8(math.Abs(v.Normal.Y) * 255),
		B: uint8(math.Abs(v.Normal.Z) * 255),
		A: 255,
	})
}
