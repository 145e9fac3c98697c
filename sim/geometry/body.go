// Package geometry provides vertex region providers built from simple
// solids. Each named region is one body; vertices are drawn uniformly in its
// volume from the caller's random stream.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/scint-sim/scint-sim/sim"
	"github.com/scint-sim/scint-sim/sim/direction"
)

// ErrInvalidBody indicates a body with missing or non-physical dimensions.
var ErrInvalidBody = errors.New("geometry: invalid body")

// Body types.
const (
	BodySphere   = "sphere"
	BodyBox      = "box"
	BodyCylinder = "cylinder"
	BodyPoint    = "point"
)

// Body describes one vertex region. Lengths are in mm.
//   - sphere: Radius, optional InnerRadius for a shell
//   - box: Size holds full edge lengths along x, y, z
//   - cylinder: axis along z, Radius and HalfLength, optional InnerRadius for a tube
//   - point: Center only
type Body struct {
	Name        string     `yaml:"name"`
	Type        string     `yaml:"type"`
	Center      [3]float64 `yaml:"center"`
	Radius      float64    `yaml:"radius,omitempty"`
	InnerRadius float64    `yaml:"inner_radius,omitempty"`
	Size        [3]float64 `yaml:"size,omitempty"`
	HalfLength  float64    `yaml:"half_length,omitempty"`
}

func (b Body) center() r3.Vec {
	return r3.Vec{X: b.Center[0], Y: b.Center[1], Z: b.Center[2]}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the dimensions required by the body type.
func (b Body) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBody)
	}
	if b.Name == sim.RegionAdHoc {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidBody, sim.RegionAdHoc)
	}
	if !finite(b.Center[0], b.Center[1], b.Center[2], b.Radius, b.InnerRadius, b.Size[0], b.Size[1], b.Size[2], b.HalfLength) {
		return fmt.Errorf("%w: %s has non-finite dimensions", ErrInvalidBody, b.Name)
	}
	switch b.Type {
	case BodySphere:
		if b.Radius <= 0 || b.InnerRadius < 0 || b.InnerRadius >= b.Radius {
			return fmt.Errorf("%w: %s needs 0 <= inner_radius < radius, got %g/%g", ErrInvalidBody, b.Name, b.InnerRadius, b.Radius)
		}
	case BodyBox:
		if b.Size[0] <= 0 || b.Size[1] <= 0 || b.Size[2] <= 0 {
			return fmt.Errorf("%w: %s needs positive size, got %v", ErrInvalidBody, b.Name, b.Size)
		}
	case BodyCylinder:
		if b.Radius <= 0 || b.InnerRadius < 0 || b.InnerRadius >= b.Radius {
			return fmt.Errorf("%w: %s needs 0 <= inner_radius < radius, got %g/%g", ErrInvalidBody, b.Name, b.InnerRadius, b.Radius)
		}
		if b.HalfLength <= 0 {
			return fmt.Errorf("%w: %s needs positive half_length, got %g", ErrInvalidBody, b.Name, b.HalfLength)
		}
	case BodyPoint:
	default:
		return fmt.Errorf("%w: %s has unknown type %q; valid: sphere, box, cylinder, point", ErrInvalidBody, b.Name, b.Type)
	}
	return nil
}

// Sample draws a point uniformly in the body's volume.
func (b Body) Sample(rng *rand.Rand) r3.Vec {
	c := b.center()
	switch b.Type {
	case BodySphere:
		r0, r1 := b.InnerRadius, b.Radius
		r := math.Cbrt(rng.Float64()*(r1*r1*r1-r0*r0*r0) + r0*r0*r0)
		return r3.Add(c, r3.Scale(r, direction.UniformSphere(rng)))
	case BodyBox:
		return r3.Add(c, r3.Vec{
			X: (rng.Float64() - 0.5) * b.Size[0],
			Y: (rng.Float64() - 0.5) * b.Size[1],
			Z: (rng.Float64() - 0.5) * b.Size[2],
		})
	case BodyCylinder:
		r0, r1 := b.InnerRadius, b.Radius
		r := math.Sqrt(rng.Float64()*(r1*r1-r0*r0) + r0*r0)
		phi := 2 * math.Pi * rng.Float64()
		z := (2*rng.Float64() - 1) * b.HalfLength
		return r3.Add(c, r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z})
	default:
		return c
	}
}

// Contains reports whether p lies inside the body (boundaries included).
func (b Body) Contains(p r3.Vec) bool {
	d := r3.Sub(p, b.center())
	switch b.Type {
	case BodySphere:
		r := r3.Norm(d)
		return r >= b.InnerRadius && r <= b.Radius
	case BodyBox:
		return math.Abs(d.X) <= b.Size[0]/2 && math.Abs(d.Y) <= b.Size[1]/2 && math.Abs(d.Z) <= b.Size[2]/2
	case BodyCylinder:
		r := math.Hypot(d.X, d.Y)
		return r >= b.InnerRadius && r <= b.Radius && math.Abs(d.Z) <= b.HalfLength
	default:
		return d == r3.Vec{}
	}
}

// Volume returns the body volume in mm³.
func (b Body) Volume() float64 {
	switch b.Type {
	case BodySphere:
		return 4.0 / 3.0 * math.Pi * (b.Radius*b.Radius*b.Radius - b.InnerRadius*b.InnerRadius*b.InnerRadius)
	case BodyBox:
		return b.Size[0] * b.Size[1] * b.Size[2]
	case BodyCylinder:
		return math.Pi * (b.Radius*b.Radius - b.InnerRadius*b.InnerRadius) * 2 * b.HalfLength
	default:
		return 0
	}
}
