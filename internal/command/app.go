package command

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/apex/log"
	"github.com/spf13/afero"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/gophersatwork/assetpack"
)

// DefaultConfigPath is used when ASSETPACK_CONFIG is not set.
const DefaultConfigPath = "assetpack.yaml"

// Meta carries what every command needs besides its flags.
type Meta struct {
	Fs         afero.Fs
	Stdout     io.Writer
	ConfigPath string
	Logger     log.Interface
}

// DefaultMeta returns the Meta of a real process.
func DefaultMeta() Meta {
	path := os.Getenv("ASSETPACK_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}
	return Meta{
		Fs:         afero.NewOsFs(),
		Stdout:     os.Stdout,
		ConfigPath: path,
		Logger:     log.Log,
	}
}

// InitApp builds the assetpack command tree.
func InitApp(meta Meta) *cli.Command {
	app := &cli.Command{
		Name:   "assetpack",
		Usage:  "build, cache and combine web assets",
		Writer: meta.Stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "cache-path",
				Usage: "cache directory, overrides cache_path of the config file",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ASSETPACK_CACHE_PATH"),
				),
			},
		},
	}

	app.Commands = append(app.Commands,
		BuildCommandBuilder(meta),
		StatsCommandBuilder(meta),
		PruneCommandBuilder(meta),
		ClearCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}

// configSource sources a flag from a key of the config file.
func configSource(meta Meta, key string) cli.ValueSource {
	return yaml.YAML(key, altsrc.StringSourcer(meta.ConfigPath))
}

// openEngine loads the config file, applies the flag overrides and opens the
// engine. Engine options are appended after the defaults.
func openEngine(cmd *cli.Command, meta Meta, options ...assetpack.Option) (*assetpack.Engine, error) {
	cfg, err := readConfig(meta)
	if err != nil {
		return nil, err
	}

	if path := cmd.String("cache-path"); path != "" {
		cfg.CachePath = path
	}
	if cmd.IsSet("dev") {
		cfg.Dev = cmd.Bool("dev")
	}
	if cmd.IsSet("force-remote") {
		cfg.ForceRemoteFetch = cmd.Bool("force-remote")
	}
	log.Debugf("config: %+v", cfg)

	options = append([]assetpack.Option{
		assetpack.WithFs(meta.Fs),
		assetpack.WithLogger(meta.Logger),
	}, options...)

	engine, err := assetpack.Open(cfg, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

// readConfig loads the config file. A missing file yields an empty config so
// that --cache-path alone is enough for the maintenance commands.
func readConfig(meta Meta) (assetpack.Config, error) {
	exists, err := afero.Exists(meta.Fs, meta.ConfigPath)
	if err != nil {
		return assetpack.Config{}, err
	}
	if !exists {
		log.Debugf("config file %s not found", meta.ConfigPath)
		return assetpack.Config{}, nil
	}

	var cfg assetpack.Config
	data, err := afero.ReadFile(meta.Fs, meta.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", meta.ConfigPath, err)
	}
	if err := assetpack.UnmarshalConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", meta.ConfigPath, err)
	}
	return cfg, nil
}
