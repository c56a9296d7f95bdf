package compositor

import (
	"fmt"
	"image"
	"strings"

	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
)

// Orientation is the rotation of a screen. Except for
// PrimaryOrientation, the values match the rotations of
// wl_extended_output.
type Orientation uint32

const (
	PrimaryOrientation           Orientation = 0
	PortraitOrientation          Orientation = Orientation(protocol.ExtendedOutputRotationPortraitOrientation)
	LandscapeOrientation         Orientation = Orientation(protocol.ExtendedOutputRotationLandscapeOrientation)
	InvertedPortraitOrientation  Orientation = Orientation(protocol.ExtendedOutputRotationInvertedPortraitOrientation)
	InvertedLandscapeOrientation Orientation = Orientation(protocol.ExtendedOutputRotationInvertedLandscapeOrientation)
)

var orientationNames = map[Orientation]string{
	PrimaryOrientation:           "primary",
	PortraitOrientation:          "portrait",
	LandscapeOrientation:         "landscape",
	InvertedPortraitOrientation:  "inverted-portrait",
	InvertedLandscapeOrientation: "inverted-landscape",
}

func (o Orientation) String() string {
	if name, ok := orientationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("orientation(%d)", uint32(o))
}

// ParseOrientation parses the name of an orientation as returned by
// String. Case is ignored.
func ParseOrientation(str string) (Orientation, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	for o, name := range orientationNames {
		if name == str {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", str)
}

// Geometry describes an output.
type Geometry struct {
	// Rect is the area of the output in compositor coordinates.
	Rect image.Rectangle

	// PhysicalSize is the size of the screen in millimeters.
	PhysicalSize image.Point

	Make, Model string

	// Refresh is the refresh rate in mHz.
	Refresh int32
}

// Output is the compositor's screen as advertised by wl_output.
type Output struct {
	c           *Compositor
	global      *wl.Global
	geometry    Geometry
	orientation Orientation
	resources   []*wl.Output
	extended    []*wl.ExtendedOutput
}

func newOutput(c *Compositor) *Output {
	o := Output{
		c: c,
		geometry: Geometry{
			Rect:    image.Rect(0, 0, 800, 600),
			Make:    "wlcomp",
			Model:   "headless",
			Refresh: 60000,
		},
	}
	o.global = c.server.AddGlobal(protocol.OutputInterface, protocol.OutputVersion, o.bind)
	return &o
}

func (o *Output) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindOutput(client, version, id)
	if err != nil {
		return err
	}
	o.resources = append(o.resources, r)
	r.OnDelete(func() { o.resources = deleteItem(o.resources, r) })

	o.sendGeometry(r)
	return nil
}

func (o *Output) sendGeometry(r *wl.Output) {
	g := o.geometry
	r.Geometry(
		int32(g.Rect.Min.X),
		int32(g.Rect.Min.Y),
		int32(g.PhysicalSize.X),
		int32(g.PhysicalSize.Y),
		int32(protocol.OutputSubpixelUnknown),
		g.Make,
		g.Model,
		int32(protocol.OutputTransformNormal),
	)
	r.Mode(
		protocol.OutputModeCurrent|protocol.OutputModePreferred,
		int32(g.Rect.Dx()),
		int32(g.Rect.Dy()),
		g.Refresh,
	)
}

func (o *Output) Geometry() Geometry {
	return o.geometry
}

// SetGeometry changes the geometry of the output and sends it to every
// client that has bound the output.
func (o *Output) SetGeometry(g Geometry) {
	o.geometry = g
	for _, r := range o.resources {
		o.sendGeometry(r)
	}
}

func (o *Output) Orientation() Orientation {
	return o.orientation
}

// SetOrientation changes the orientation of the output and tells every
// client that has an extended output.
func (o *Output) SetOrientation(orientation Orientation) {
	o.orientation = orientation
	for _, eo := range o.extended {
		eo.SetScreenRotation(int32(orientation))
	}
}

// Resources returns the wl_output objects of client.
func (o *Output) Resources(client *wl.Client) []*wl.Output {
	var resources []*wl.Output
	for _, r := range o.resources {
		if r.Client() == client {
			resources = append(resources, r)
		}
	}
	return resources
}

// OutputExtension is the wl_output_extension global, which lets
// clients learn about the orientation of the screen.
type OutputExtension struct {
	c      *Compositor
	global *wl.Global
}

func newOutputExtension(c *Compositor) *OutputExtension {
	ext := OutputExtension{c: c}
	ext.global = c.server.AddGlobal(protocol.OutputExtensionInterface, protocol.OutputExtensionVersion, ext.bind)
	return &ext
}

func (ext *OutputExtension) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindOutputExtension(client, version, id)
	if err != nil {
		return err
	}
	r.Listener = (*outputExtensionListener)(ext)
	return nil
}

type outputExtensionListener OutputExtension

func (lis *outputExtensionListener) GetExtendedOutput(eo *wl.ExtendedOutput, _ *wl.Output) {
	o := lis.c.output
	o.extended = append(o.extended, eo)
	eo.OnDelete(func() { o.extended = deleteItem(o.extended, eo) })

	if o.orientation != PrimaryOrientation {
		eo.SetScreenRotation(int32(o.orientation))
	}
}
