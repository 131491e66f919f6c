package command

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/gophersatwork/assetpack"
	"github.com/gophersatwork/assetpack/minify"
)

// BuildCommandAction loads the manifest, builds the requested assets and
// writes the tags referencing them to stdout.
func BuildCommandAction(ctx context.Context, cmd *cli.Command, meta Meta) error {
	var failures atomic.Int64
	reporter := assetpack.ReporterFunc(func(assetpack.Failure) {
		failures.Add(1)
	})

	engine, err := openEngine(cmd, meta, assetpack.WithErrorReporter(reporter))
	if err != nil {
		return err
	}
	defer engine.Close()

	manifest, err := assetpack.LoadManifest(meta.Fs, cmd.String("manifest"))
	if err != nil {
		return err
	}

	styles, scripts := kinds(cmd.Bool("minify"))
	registry := engine.NewRegistry(styles, scripts)
	if err := registry.Add(manifest); err != nil {
		log.Debugf("skipped invalid declarations: %v", err)
	}

	session, err := engine.NewSession()
	if err != nil {
		return err
	}

	selectedStyles, selectedScripts := registry.Group(cmd.String("group"))
	log.Debugf("building %d styles and %d scripts", len(selectedStyles), len(selectedScripts))

	var styleRefs, scriptRefs []assetpack.Reference
	if cmd.Bool("combine") {
		loc := engine.Config().Location()
		out := session.Build(selectedStyles, selectedScripts)
		styleRefs, scriptRefs = out.StyleRefs(loc), out.ScriptRefs(loc)
	} else {
		styleRefs = session.References(selectedStyles)
		scriptRefs = session.References(selectedScripts)
	}

	r := assetpack.HTMLRenderer{Indent: cmd.String("indent")}
	if err := r.RenderStyles(meta.Stdout, styleRefs); err != nil {
		return err
	}
	if err := r.RenderScripts(meta.Stdout, scriptRefs); err != nil {
		return err
	}

	if n := failures.Load(); n > 0 {
		log.Warnf("%d asset failures, see the error log", n)
		if cmd.Bool("strict") {
			return fmt.Errorf("build finished with %d failures", n)
		}
	}
	return nil
}

func kinds(minified bool) (assetpack.Kind, assetpack.Kind) {
	if !minified {
		return assetpack.Styles(nil, nil), assetpack.Scripts(nil, nil)
	}
	return assetpack.Styles(nil, minify.Style), assetpack.Scripts(nil, minify.Script)
}

// BuildCommandBuilder constructs the cli.Command for "build".
func BuildCommandBuilder(meta Meta) *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "build assets and print the tags referencing them",
		UsageText: `assetpack build [options]`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "combine",
				Usage: "combine assets into bundles",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ASSETPACK_COMBINE"),
					configSource(meta, "combine"),
				),
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "use the dev variant of every asset",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ASSETPACK_DEV"),
				),
			},
			&cli.BoolFlag{
				Name:  "force-remote",
				Usage: "fetch every source over HTTP and refresh remote caches",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ASSETPACK_FORCE_CURL"),
				),
			},
			&cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "only build assets labeled with this group",
			},
			&cli.StringFlag{
				Name:  "indent",
				Usage: "string written before every tag",
			},
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "asset manifest file",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ASSETPACK_MANIFEST"),
					configSource(meta, "manifest"),
				),
				Value: "assets.yaml",
			},
			&cli.BoolFlag{
				Name:  "minify",
				Usage: "minify the production cache files",
				Sources: cli.NewValueSourceChain(
					configSource(meta, "minify"),
				),
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit with an error when any asset failed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return BuildCommandAction(ctx, cmd, meta)
		},
	}
}
