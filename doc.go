/*
	Package assetpack builds, caches and combines the styles and scripts of a web site.

It turns asset declarations into cached, optionally minified files and combined
bundles inside one flat cache directory, and hands back the references pages
embed.

# Overview

Every asset has a dev and a prod variant, each a local file or a remote URL.
The variant matching the configured mode is fetched, parsed and minified with
the capabilities of its Kind, and written to two cache files:

	<file_prefix><name>.parsed.<ext>
	<file_prefix><name>.parsed.min.<ext>

In dev mode an asset declaring both variants writes <name>.dev.parsed.<ext>
and <name>.dev.parsed.min.<ext> instead, leaving the prod cache files alone.

A cache file is regenerated only when it is missing or not newer than its
source. Remote sources report the Unix epoch as their modification time, so
their cache files are written once and kept until remote fetches are forced.

Assets are combined into bundles named after the hash of their member names:
one bundle per media group for styles, one bundle for scripts. A bundle is
rewritten only when it is missing from the cache directory or older than its
newest member.

# Basic Usage

	engine, err := assetpack.Open(assetpack.Config{
		CachePath: "/srv/www/cache",
		CacheURL:  "/cache",
		AssetPath: "/srv/www/assets",
		AssetURL:  "/assets",
	})
	if err != nil {
		return err
	}

	registry := engine.NewRegistry(
		assetpack.Styles(nil, minify.Style),
		assetpack.Scripts(nil, minify.Script),
	)
	registry.AddStyle(assetpack.Declaration{ProdFile: "site.css"})
	registry.AddScript(assetpack.Declaration{DevFile: "app.js", ProdFile: "app.min.js"})

	session, err := engine.NewSession()
	if err != nil {
		return err
	}
	out := session.Build(registry.Styles(), registry.Scripts())

	r := assetpack.HTMLRenderer{}
	r.RenderStyles(w, out.StyleRefs(engine.Config().Location()))
	r.RenderScripts(w, out.ScriptRefs(engine.Config().Location()))

# Configuration Options

  - WithFs: use a custom afero filesystem (useful for testing)
  - WithHashFunc: name bundles with a different hash (default md5)
  - WithNowFunc: custom time source
  - WithFetcher / WithHTTPClient: replace how sources are read
  - WithErrorReporter: receive every recoverable failure
  - WithLogger: apex/log logger (default log.Log)
  - WithContentAddressedBundles: name bundles after their bytes
  - WithLegacyBundlePoisoning: a failed bundle write disables the whole asset type

# Error Handling

Building never fails because of one asset. Invalid declarations, failed
fetches and failed writes are logged, passed to the ErrorReporter and skipped:
the asset is left out of its bundle, or the bundle out of the output. The
typed errors ValidationError, FetchError, WriteError and ConfigError can be
inspected with errors.As.

# Concurrency

An Engine may be shared. A Session and the assets built for it belong to one
goroutine, although the members of a bundle are fetched in parallel.
*/
package assetpack
