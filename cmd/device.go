package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/gpu/host"
	"github.com/lunex-engine/rtscene/gpu/opengl"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

const bindlessExtension = "GL_ARB_bindless_texture"

// Create the device used for building scenes.
func openDevice(deviceType string, bindless bool) (gpu.Device, error) {
	switch deviceType {
	case "host":
		return host.NewDevice("host", host.WithBindless(bindless)), nil
	case "opengl":
		dev, err := opengl.NewHeadlessDevice()
		if err != nil {
			return nil, err
		}
		if !bindless && dev.Bindless() != nil {
			logger.Warning("bindless textures cannot be disabled on opengl devices")
		}
		return dev, nil
	}
	return nil, fmt.Errorf("unsupported device type %q", deviceType)
}

// Display information about the OpenGL device.
func ShowDeviceInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	dev, err := opengl.NewHeadlessDevice()
	if err != nil {
		return err
	}
	defer dev.Close()

	info := dev.Info()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Vendor", info.Vendor})
	table.Append([]string{"Renderer", info.Renderer})
	table.Append([]string{"Version", info.Version})
	table.Append([]string{"GLSL", info.GLSL})
	table.Append([]string{"Bindless textures", fmt.Sprintf("%t", info.HasExtension(bindlessExtension))})
	table.Append([]string{"Extensions", fmt.Sprint(len(info.Extensions))})
	table.Render()

	logger.Noticef("device information:\n%s", buf.String())

	if ctx.Bool("extensions") {
		logger.Noticef("supported extensions:\n  %s", strings.Join(info.Extensions, "\n  "))
	}
	return nil
}
