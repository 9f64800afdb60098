package material

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
)

// DefaultShininess is the specular exponent given to MakeColor and MakeEmissive surfaces.
const DefaultShininess float32 = 30

// surface is the implementation of the Surface interface.
type surface struct {
	name      string
	baseColor [4]float32
	diffuse   *common.TextureStagingData
	ambient   *common.TextureStagingData
	emission  *common.TextureStagingData
	specular  *common.TextureStagingData
	bump      *common.TextureStagingData
	shininess float32
}

// Surface describes how a material shades: five texture slots sampled by the lit
// shader plus a specular exponent. Solid colors are expressed as 1x1 textures so one
// shader serves textured and untextured surfaces alike.
//
// Surfaces are immutable once built and may be shared between materials.
type Surface interface {
	// Name retrieves the surface identifier.
	//
	// Returns:
	//   - string: the name of the surface
	Name() string

	// BaseColor retrieves the color the surface was made from, or opaque white for
	// texture-built surfaces.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Diffuse retrieves the diffuse texture.
	//
	// Returns:
	//   - *common.TextureStagingData: the diffuse slot
	Diffuse() *common.TextureStagingData

	// Ambient retrieves the texture modulating ambient light.
	//
	// Returns:
	//   - *common.TextureStagingData: the ambient slot
	Ambient() *common.TextureStagingData

	// Emission retrieves the self-illumination texture.
	//
	// Returns:
	//   - *common.TextureStagingData: the emission slot
	Emission() *common.TextureStagingData

	// Specular retrieves the specular color texture.
	//
	// Returns:
	//   - *common.TextureStagingData: the specular slot
	Specular() *common.TextureStagingData

	// Bump retrieves the tangent-space normal map.
	//
	// Returns:
	//   - *common.TextureStagingData: the bump slot
	Bump() *common.TextureStagingData

	// Shininess retrieves the specular exponent.
	//
	// Returns:
	//   - float32: the shininess
	Shininess() float32
}

var _ Surface = &surface{}

// NewSurface creates a Surface from explicit slots. Unset slots default to the neutral
// textures: black for diffuse, ambient, emission and specular, flat for bump.
//
// Parameters:
//   - options: variadic list of SurfaceBuilderOption functions to configure the surface
//
// Returns:
//   - Surface: a new Surface instance
func NewSurface(options ...SurfaceBuilderOption) Surface {
	s := &surface{
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(s)
	}
	black := SolidTexture([4]float32{0, 0, 0, 0})
	s.diffuse = common.Coalesce(s.diffuse, black)
	s.ambient = common.Coalesce(s.ambient, black)
	s.emission = common.Coalesce(s.emission, black)
	s.specular = common.Coalesce(s.specular, black)
	s.bump = common.Coalesce(s.bump, FlatNormal())
	return s
}

// MakeColor builds a solid-color Surface. Diffuse and ambient are the color itself and
// emission is black. A shiny surface gets a mid-gray specular highlight, otherwise
// specular is black. A bumpy surface gets the procedural bump map, otherwise the flat
// normal. Shininess is DefaultShininess either way.
//
// Parameters:
//   - color: the RGBA color, components in [0, 1]
//   - bumpy: true to use the procedural bump map
//   - shiny: true for a specular highlight
//
// Returns:
//   - Surface: the surface
func MakeColor(color [4]float32, bumpy, shiny bool) Surface {
	solid := SolidTexture(color)
	specular := SolidTexture([4]float32{0, 0, 0, 0})
	if shiny {
		specular = SolidTexture([4]float32{0.5, 0.5, 0.5, 0})
	}
	bump := FlatNormal()
	if bumpy {
		bump = ProceduralBump()
	}
	return NewSurface(
		WithBaseColor(color),
		WithDiffuse(solid),
		WithAmbient(solid),
		WithEmission(SolidTexture([4]float32{0, 0, 0, 0})),
		WithSpecular(specular),
		WithBump(bump),
		WithShininess(DefaultShininess),
	)
}

// MakeEmissive builds a Surface lit only by its own emission texture. Diffuse, ambient
// and specular are black and the bump is flat.
//
// Parameters:
//   - tex: the emission texture, nil for black
//
// Returns:
//   - Surface: the surface
func MakeEmissive(tex *common.TextureStagingData) Surface {
	black := SolidTexture([4]float32{0, 0, 0, 0})
	return NewSurface(
		WithDiffuse(black),
		WithAmbient(black),
		WithEmission(tex),
		WithSpecular(black),
		WithBump(FlatNormal()),
		WithShininess(DefaultShininess),
	)
}

func (s *surface) Name() string {
	return s.name
}

func (s *surface) BaseColor() [4]float32 {
	return s.baseColor
}

func (s *surface) Diffuse() *common.TextureStagingData {
	return s.diffuse
}

func (s *surface) Ambient() *common.TextureStagingData {
	return s.ambient
}

func (s *surface) Emission() *common.TextureStagingData {
	return s.emission
}

func (s *surface) Specular() *common.TextureStagingData {
	return s.specular
}

func (s *surface) Bump() *common.TextureStagingData {
	return s.bump
}

func (s *surface) Shininess() float32 {
	return s.shininess
}
