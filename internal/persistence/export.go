package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// ErrExportUnsupported is returned when there is no frame to export or the
// requested format cannot be produced.
var ErrExportUnsupported = errors.New("export unsupported")

const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// FormatFromPath picks the export format from a file extension.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// EncodeFrame writes img in the given format. A positive width rescales the
// frame, keeping its aspect ratio.
func EncodeFrame(w io.Writer, img image.Image, format string, width int) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: no frame", ErrExportUnsupported)
	}
	if width > 0 && width != img.Bounds().Dx() {
		img = resize(img, width)
	}

	switch format {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: format %q", ErrExportUnsupported, format)
	}
	return nil
}

// ExportFrame encodes img into a new file at path, the format taken from
// the extension.
func ExportFrame(path string, img image.Image, width int) error {
	format := FormatFromPath(path)
	if format != FormatWebP && format != FormatPNG {
		return fmt.Errorf("%w: format %q", ErrExportUnsupported, format)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: no frame", ErrExportUnsupported)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeFrame(f, img, format, width); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	logger.Log.Info("Frame exported", zap.String("path", path), zap.String("format", format))
	return nil
}

func resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// NodeDump is the diagnostic form of one scene-graph node.
type NodeDump struct {
	Name      string      `json:"name"`
	Position  [3]float32  `json:"position"`
	Rotation  [3]float32  `json:"rotation"` // Euler angles
	Scale     [3]float32  `json:"scale"`
	Visible   bool        `json:"visible"`
	Vertices  int         `json:"vertices,omitempty"`
	Triangles int         `json:"triangles,omitempty"`
	Source    string      `json:"source,omitempty"`
	Children  []*NodeDump `json:"children,omitempty"`
}

func dumpNode(n *renderer.Node) *NodeDump {
	d := &NodeDump{
		Name:     n.Name,
		Position: n.Position,
		Rotation: n.RotationEuler(),
		Scale:    n.Scale,
		Visible:  n.Visible,
	}
	if n.Mesh != nil {
		d.Vertices = n.Mesh.VertexCount()
		d.Triangles = n.Mesh.TriangleCount()
		d.Source = n.Mesh.SourcePath
	}
	for _, c := range n.Children() {
		d.Children = append(d.Children, dumpNode(c))
	}
	return d
}

// DumpSceneGraph writes the whole scene graph as indented JSON.
func DumpSceneGraph(w io.Writer, s *renderer.Scene) error {
	data, err := json.MarshalIndent(dumpNode(s.Root), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
