package main

import (
	"fmt"
	"os"

	"github.com/lunex-engine/rtscene/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rtscene"
	app.Usage = "build GPU ray tracing scene tables"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build ray tracing tables for glTF scenes",
			Description: `
Parse a scene from a glTF (.gltf or .glb) file, flatten its meshes into world
space triangles, build a BVH tree over them and pack materials, texture handles
and lights into GPU storage buffers.

The built tables can optionally be written to a zip archive which can be
inspected with the info command.`,
			ArgsUsage: "scene_file1.gltf scene_file2.glb ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "load build options from a YAML file",
				},
				cli.StringFlag{
					Name:  "device, d",
					Value: "host",
					Usage: "device type (host or opengl)",
				},
				cli.BoolTFlag{
					Name:  "bindless",
					Usage: "enable bindless textures on host devices",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write the built tables to this zip file",
				},
			},
			Action: cmd.BuildScene,
		},
		{
			Name:      "info",
			Usage:     "print statistics for a scene dump",
			ArgsUsage: "dump.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "device-info",
			Usage: "print OpenGL device information",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "extensions",
					Usage: "list all supported extensions",
				},
			},
			Action: cmd.ShowDeviceInfo,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
