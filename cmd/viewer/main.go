// Command viewer opens a window and renders the demo scene on the GPU through the
// engine's frame loop.
package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/demo"
	"github.com/Carmen-Shannon/oxy-scene/engine/mesh"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
	"github.com/spf13/cobra"
)

var (
	//go:embed shaders/lighting.wgsl
	lightingSource string

	//go:embed shaders/object.wgsl
	objectSource string

	//go:embed shaders/skinned.wgsl
	skinnedSource string
)

// cubeScale sizes the unit cube to the demo grid spacing.
const cubeScale = 8

func newRootCommand() *cobra.Command {
	var configPath string
	var software bool
	cmd := &cobra.Command{
		Use:          "viewer",
		Short:        "Render the demo scene in a window",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			return run(cmd, cfg, software)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML or TOML configuration file")
	cmd.Flags().BoolVar(&software, "software", false, "force the fallback (software) adapter")
	return cmd
}

func run(cmd *cobra.Command, cfg config.Config, software bool) error {
	// ── Window + GPU ────────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)

	presentMode := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		presentMode = renderer.PresentModeVSync
	}
	backend, err := renderer.NewWGPUBackend(win.SurfaceDescriptor(),
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(software),
	)
	if err != nil {
		return err
	}
	backend.ConfigureSurface(win.Width(), win.Height())

	// ── Pipelines ───────────────────────────────────────────────────
	objectPipeline, err := backend.CreatePipeline("object", lightingSource+objectSource,
		(&renderer.GPUObjectUniform{}).Size())
	if err != nil {
		return err
	}
	skinnedPipeline, err := backend.CreatePipeline("skinned", lightingSource+skinnedSource,
		(&renderer.GPUSkinnedUniform{}).Size())
	if err != nil {
		return err
	}

	// ── Scene ───────────────────────────────────────────────────────
	vertices, indices := renderer.Cube()
	for i := range vertices {
		for j := range vertices[i].Position {
			vertices[i].Position[j] *= cubeScale
		}
	}
	device, queue, target := backend.Device(), backend.Queue(), backend.PassTarget()

	d, err := demo.Build(cmd.Context(), cfg,
		demo.WithMeshFactory(func(name string, skin mesh.Skin) (mesh.Mesh, error) {
			return renderer.UploadMesh(device, queue, target, name, vertices, indices, skin)
		}),
		// Uniform writes land before the pass runs, so every instance needs its own material.
		demo.WithMaterialFactory(func(name string, s material.Surface) (mesh.Material, error) {
			return renderer.NewWGPUMaterial(device, queue, target,
				renderer.WithMaterialLabel(name),
				renderer.WithSurface(s),
			), nil
		}),
	)
	if err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithFrameTarget(backend),
		engine.WithPipelines(objectPipeline, skinnedPipeline),
		engine.WithTickRate(float64(cfg.Engine.TickRate)),
		engine.WithProfiling(cfg.Engine.Profile),
		engine.WithResizeCallback(func(width, height int) {
			if width > 0 && height > 0 {
				backend.ConfigureSurface(width, height)
			}
		}),
		engine.WithScene(0, d.Scene),
	)

	// Scroll dollies the camera along its view axis.
	camNode := d.Scene.CameraInstance(0).Node()
	win.SetScrollCallback(func(delta float32) {
		if err := d.Scene.Graph().Translate(camNode, 0, 0, -delta*10); err != nil {
			log.Printf("[Viewer] zoom: %v", err)
		}
	})

	return eng.Run()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}
}
