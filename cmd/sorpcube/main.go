package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/config"
	"github.com/sorpv/sorpcube/internal/content"
	"github.com/sorpv/sorpcube/internal/render"
	"github.com/sorpv/sorpcube/internal/vulkan"
	"github.com/sorpv/sorpcube/internal/window"
	"github.com/spf13/pflag"
)

type SorpCubeApplication struct {
	cfg *config.Config

	window   *window.Window
	device   *vulkan.DeviceContext
	backend  *vulkan.Backend
	renderer *render.Renderer
}

func (app *SorpCubeApplication) Run() error {
	err := app.initWindow()
	if err != nil {
		return err
	}
	defer app.cleanup()

	err = app.initVulkan()
	if err != nil {
		return err
	}

	return app.renderer.Run()
}

func (app *SorpCubeApplication) initWindow() error {
	var err error
	app.window, err = window.New(app.cfg.Title, app.cfg.Width, app.cfg.Height)
	return err
}

func (app *SorpCubeApplication) initVulkan() error {
	resolver, err := content.Open(app.cfg.ContentDir)
	if err != nil {
		return err
	}
	slog.Debug("content directory", "root", resolver.Root())

	assets, err := resolver.LoadAssets(context.Background(), content.AssetNames{
		Texture:        app.cfg.Texture,
		Mesh:           app.cfg.Mesh,
		VertexShader:   app.cfg.VertexShader,
		FragmentShader: app.cfg.FragmentShader,
	})
	if err != nil {
		return errors.Wrap(err, "load assets")
	}

	app.device, err = vulkan.NewDeviceContext(app.window.SDL(), vulkan.ContextOptions{
		AppName:    app.cfg.Title,
		Validation: app.cfg.Validation,
	})
	if err != nil {
		return err
	}

	app.backend, err = vulkan.NewBackend(app.device, assets, vulkan.BackendOptions{
		FramesInFlight:    app.cfg.FramesInFlight,
		PresentMode:       app.cfg.PresentMode,
		PipelineCachePath: app.cfg.PipelineCache,
	})
	if err != nil {
		return err
	}

	app.renderer, err = render.New(app.backend, app.window, app.backend.Uniforms(), render.Options{
		FramesInFlight: app.cfg.FramesInFlight,
	})
	return err
}

func (app *SorpCubeApplication) cleanup() {
	if app.device != nil {
		err := app.device.WaitIdle()
		if err != nil {
			slog.Warn("device did not go idle", "error", err)
		}
	}

	if app.renderer != nil {
		stats := app.renderer.Stats()
		slog.Info("renderer stopped",
			"frames", stats.Frames,
			"rebuilds", stats.Rebuilds,
			"dropped", stats.DroppedFrames)
		app.renderer.Destroy()
	}

	if app.backend != nil {
		app.backend.Destroy()
	}

	if app.device != nil {
		app.device.Destroy()
	}

	if app.window != nil {
		app.window.Destroy()
	}
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.Parse(pflag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	app := &SorpCubeApplication{cfg: cfg}

	err = app.Run()
	if err != nil {
		logger.Error("sorpcube failed", "error", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}
