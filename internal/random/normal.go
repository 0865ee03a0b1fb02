// Package random provides normally distributed deviates for the simulation
// engine, generated with the Box-Muller transform over an injectable uniform
// source.
package random

import (
	"math"
	"math/rand/v2"
)

// Uniform is a source of uniform variates in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Sampler draws from normal distributions. A Sampler is not safe for
// concurrent use; give every goroutine its own.
type Sampler struct {
	src Uniform
}

// NewSampler wraps an existing uniform source.
func NewSampler(src Uniform) *Sampler {
	return &Sampler{src: src}
}

// NewSeeded returns a Sampler backed by a PCG generator. Samplers with the
// same seed and stream produce the same sequence; different streams of one
// seed are independent.
func NewSeeded(seed, stream uint64) *Sampler {
	return &Sampler{src: rand.New(rand.NewPCG(seed, mix(stream)))}
}

// New returns a Sampler seeded from the runtime's random source.
func New() *Sampler {
	return &Sampler{src: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// StdNormal returns a draw from N(0, 1).
func (s *Sampler) StdNormal() float64 {
	u1 := s.open()
	u2 := s.open()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Normal returns a draw from N(mean, stdDev).
func (s *Sampler) Normal(mean, stdDev float64) float64 {
	return mean + stdDev*s.StdNormal()
}

// Fill overwrites dst with independent draws from N(mean, stdDev).
func (s *Sampler) Fill(dst []float64, mean, stdDev float64) {
	for i := range dst {
		dst[i] = s.Normal(mean, stdDev)
	}
}

// open returns a uniform variate strictly inside (0, 1).
func (s *Sampler) open() float64 {
	for {
		u := s.src.Float64()
		if u > 0 && u < 1 {
			return u
		}
	}
}

// mix spreads consecutive stream ids across the PCG increment space
// (splitmix64 finalizer).
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
