package config

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

const (
	PresentModeMailbox   = "mailbox"
	PresentModeFIFO      = "fifo"
	PresentModeImmediate = "immediate"
)

type Config struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`

	FramesInFlight int    `toml:"frames_in_flight"`
	PresentMode    string `toml:"present_mode"`
	Validation     bool   `toml:"validation"`

	// ContentDir is searched for upward from the working directory when empty.
	ContentDir     string `toml:"content_dir"`
	Texture        string `toml:"texture"`
	Mesh           string `toml:"mesh"`
	VertexShader   string `toml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader"`
	PipelineCache  string `toml:"pipeline_cache"`

	LogLevel string `toml:"log_level"`
}

func Default() Config {
	return Config{
		Title:          "SorpSimpleApp",
		Width:          800,
		Height:         600,
		FramesInFlight: 2,
		PresentMode:    PresentModeMailbox,
		Validation:     true,
		Texture:        "textures/0.png",
		VertexShader:   "shaders/compiled/simple_shader.vert.spv",
		FragmentShader: "shaders/compiled/simple_shader.frag.spv",
		PipelineCache:  "pipeline.cache",
		LogLevel:       "info",
	}
}

// Load decodes a TOML file over c. Keys the Config does not know are an error.
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer f.Close()

	err = toml.NewDecoder(f).DisallowUnknownFields().Decode(c)
	if err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.Newf("config %s: %s", path, strict.String())
		}
		return errors.Wrapf(err, "decode config %s", path)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FramesInFlight < 1 {
		return errors.Newf("frames in flight must be at least 1, got %d", c.FramesInFlight)
	}

	switch c.PresentMode {
	case PresentModeMailbox, PresentModeFIFO, PresentModeImmediate:
	default:
		return errors.Newf("unknown present mode %q", c.PresentMode)
	}

	_, err := ParseLevel(c.LogLevel)
	return err
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	if err != nil {
		return 0, errors.Wrapf(err, "log level %q", s)
	}
	return level, nil
}

// BindFlags registers a flag for every setting, writing into c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Title, "title", c.Title, "window title")
	fs.IntVar(&c.Width, "width", c.Width, "initial window width")
	fs.IntVar(&c.Height, "height", c.Height, "initial window height")
	fs.IntVarP(&c.FramesInFlight, "frames", "n", c.FramesInFlight, "frames in flight")
	fs.StringVar(&c.PresentMode, "present-mode", c.PresentMode, "preferred present mode: mailbox, fifo or immediate")
	fs.BoolVar(&c.Validation, "validation", c.Validation, "enable the Khronos validation layer")
	fs.StringVar(&c.ContentDir, "content", c.ContentDir, "content directory")
	fs.StringVar(&c.Texture, "texture", c.Texture, "texture image, relative to the content directory")
	fs.StringVar(&c.Mesh, "mesh", c.Mesh, "OBJ mesh to draw instead of the cube")
	fs.StringVar(&c.PipelineCache, "pipeline-cache", c.PipelineCache, "pipeline cache file, empty to disable")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
}

// Parse builds a Config from defaults, an optional TOML file named by
// --config, and the command line, in increasing precedence.
func Parse(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := Default()
	cfg.BindFlags(fs)
	path := fs.StringP("config", "c", "", "TOML configuration file")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	if *path != "" {
		set := make(map[string]string)
		fs.Visit(func(f *pflag.Flag) {
			set[f.Name] = f.Value.String()
		})

		err = cfg.Load(*path)
		if err != nil {
			return nil, err
		}

		for name, value := range set {
			err = fs.Set(name, value)
			if err != nil {
				return nil, errors.Wrapf(err, "flag --%s", name)
			}
		}
	}

	err = cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}
