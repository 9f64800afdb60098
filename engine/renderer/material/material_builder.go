package material

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
)

// SurfaceBuilderOption is a function that configures a surface during construction.
type SurfaceBuilderOption func(*surface)

// WithName is an option builder that sets the name of the surface.
//
// Parameters:
//   - name: the identifier for the surface
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the name option to a surface
func WithName(name string) SurfaceBuilderOption {
	return func(s *surface) {
		s.name = name
	}
}

// WithBaseColor is an option builder that records the color a surface was made from.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the base color option to a surface
func WithBaseColor(color [4]float32) SurfaceBuilderOption {
	return func(s *surface) {
		s.baseColor = color
	}
}

// WithDiffuse is an option builder that sets the diffuse texture.
//
// Parameters:
//   - tex: the diffuse texture
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the diffuse option to a surface
func WithDiffuse(tex *common.TextureStagingData) SurfaceBuilderOption {
	return func(s *surface) {
		s.diffuse = tex
	}
}

// WithAmbient is an option builder that sets the ambient texture.
//
// Parameters:
//   - tex: the ambient texture
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the ambient option to a surface
func WithAmbient(tex *common.TextureStagingData) SurfaceBuilderOption {
	return func(s *surface) {
		s.ambient = tex
	}
}

// WithEmission is an option builder that sets the emission texture.
//
// Parameters:
//   - tex: the emission texture
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the emission option to a surface
func WithEmission(tex *common.TextureStagingData) SurfaceBuilderOption {
	return func(s *surface) {
		s.emission = tex
	}
}

// WithSpecular is an option builder that sets the specular texture.
//
// Parameters:
//   - tex: the specular texture
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the specular option to a surface
func WithSpecular(tex *common.TextureStagingData) SurfaceBuilderOption {
	return func(s *surface) {
		s.specular = tex
	}
}

// WithBump is an option builder that sets the normal map.
//
// Parameters:
//   - tex: the tangent-space normal map
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the bump option to a surface
func WithBump(tex *common.TextureStagingData) SurfaceBuilderOption {
	return func(s *surface) {
		s.bump = tex
	}
}

// WithShininess is an option builder that sets the specular exponent.
//
// Parameters:
//   - shininess: the exponent
//
// Returns:
//   - SurfaceBuilderOption: a function that applies the shininess option to a surface
func WithShininess(shininess float32) SurfaceBuilderOption {
	return func(s *surface) {
		s.shininess = shininess
	}
}
