// Package config loads scene build options from YAML files.
package config

import (
	"fmt"
	"os"

	"github.com/lunex-engine/rtscene/accel/bvh"
	"github.com/lunex-engine/rtscene/raytrace"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Bindings lists the shader storage binding points of the scene tables.
type Bindings struct {
	Triangles uint32 `yaml:"triangles"`
	BVH       uint32 `yaml:"bvh"`
	Materials uint32 `yaml:"materials"`
	Textures  uint32 `yaml:"textures"`
	Lights    uint32 `yaml:"lights"`
}

// BVH mirrors bvh.Options. Zero values select the builder defaults.
type BVH struct {
	Buckets       int     `yaml:"buckets"`
	MaxLeafSize   int     `yaml:"max_leaf_size"`
	MaxDepth      int     `yaml:"max_depth"`
	TraversalCost float32 `yaml:"traversal_cost"`
	IntersectCost float32 `yaml:"intersect_cost"`
}

// Config holds the settings used by the build command.
type Config struct {
	LogLevel string   `yaml:"log_level"`
	Device   string   `yaml:"device"`
	Bindless bool     `yaml:"bindless"`
	BVH      BVH      `yaml:"bvh"`
	Bindings Bindings `yaml:"bindings"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "notice",
		Device:   "host",
		Bindless: true,
		BVH: BVH{
			Buckets:       bvh.DefaultOptions.Buckets,
			MaxLeafSize:   bvh.DefaultOptions.MaxLeafSize,
			MaxDepth:      bvh.DefaultOptions.MaxDepth,
			TraversalCost: bvh.DefaultOptions.TraversalCost,
			IntersectCost: bvh.DefaultOptions.IntersectCost,
		},
		Bindings: Bindings{
			Triangles: 0,
			BVH:       1,
			Materials: 2,
			Textures:  3,
			Lights:    4,
		},
	}
}

// Load reads a YAML file on top of the default configuration.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "config: could not parse %s", path)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that binding points do not overlap and the device
// type is known.
func (c *Config) Validate() error {
	switch c.Device {
	case "host", "opengl":
	default:
		return fmt.Errorf("config: unsupported device %q", c.Device)
	}

	seen := make(map[uint32]string)
	for _, b := range []struct {
		name  string
		point uint32
	}{
		{"triangles", c.Bindings.Triangles},
		{"bvh", c.Bindings.BVH},
		{"materials", c.Bindings.Materials},
		{"textures", c.Bindings.Textures},
		{"lights", c.Bindings.Lights},
	} {
		if other, exists := seen[b.point]; exists {
			return fmt.Errorf("config: %s and %s share binding point %d", other, b.name, b.point)
		}
		seen[b.point] = b.name
	}
	return nil
}

// SceneOptions returns the scene builder options.
func (c *Config) SceneOptions() raytrace.Options {
	return raytrace.Options{
		BVH: bvh.Options{
			Buckets:       c.BVH.Buckets,
			MaxLeafSize:   c.BVH.MaxLeafSize,
			MaxDepth:      c.BVH.MaxDepth,
			TraversalCost: c.BVH.TraversalCost,
			IntersectCost: c.BVH.IntersectCost,
		},
	}
}
