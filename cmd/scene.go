package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/lunex-engine/rtscene/asset/scene/reader"
	"github.com/lunex-engine/rtscene/asset/scene/writer"
	"github.com/lunex-engine/rtscene/config"
	"github.com/lunex-engine/rtscene/raytrace"
	"github.com/urfave/cli"
)

// Load the build configuration and apply command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile := ctx.String("config"); cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet("device") {
		cfg.Device = ctx.String("device")
	}
	if ctx.IsSet("bindless") {
		cfg.Bindless = ctx.BoolT("bindless")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, applyLogLevel(ctx, cfg.LogLevel)
}

// Build the ray tracing tables for one or more glTF scenes.
func BuildScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene file argument")
	}
	outFile := ctx.String("out")
	if outFile != "" && ctx.NArg() != 1 {
		return errors.New("--out can only be used with a single scene file")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	dev, err := openDevice(cfg.Device, cfg.Bindless)
	if err != nil {
		return err
	}
	defer dev.Close()
	logger.Noticef(`using device "%s"`, dev.Name())

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)

		logger.Noticef("building scene: %s", sceneFile)
		renderData, err := reader.ReadScene(sceneFile, dev)
		if err != nil {
			return err
		}

		sc := raytrace.NewScene(dev, cfg.SceneOptions())
		if _, err = sc.Rebuild(renderData); err != nil {
			sc.Shutdown()
			return err
		}

		b := cfg.Bindings
		if err = sc.Bind(b.Triangles, b.BVH, b.Materials, b.Textures); err == nil {
			err = sc.BindLights(b.Lights)
		}
		if err != nil {
			sc.Shutdown()
			return err
		}

		// Display built scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		if outFile != "" {
			err = writer.WriteSnapshot(sc.Snapshot(), outFile)
		}
		sc.Shutdown()
		if err != nil {
			return err
		}
	}

	return nil
}

// Display built scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene dump zip file")
	}

	dumpFile := ctx.Args().First()
	if !strings.EqualFold(filepath.Ext(dumpFile), ".zip") {
		return errors.New("only scene dumps with a .zip extension are supported")
	}

	snapshot, err := reader.ReadSnapshot(dumpFile)
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", snapshot.Stats())
	return nil
}
