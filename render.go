package assetpack

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Reference is what a consumer embeds to load a bundle or a single asset.
type Reference struct {
	URL       string
	CacheBust string // YYYYMMDD token
	Media     string // styles only
}

// Href returns the URL with the cache-bust query appended.
func (r Reference) Href() string {
	if r.CacheBust == "" {
		return r.URL
	}
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	return r.URL + sep + "=" + r.CacheBust
}

// Renderer writes the markup for a set of references.
type Renderer interface {
	RenderStyles(w io.Writer, refs []Reference) error
	RenderScripts(w io.Writer, refs []Reference) error
}

// HTMLRenderer writes <link> and <script> tags, one per line.
type HTMLRenderer struct {
	// Indent is written before every tag.
	Indent string
}

var _ Renderer = HTMLRenderer{}

func (r HTMLRenderer) RenderStyles(w io.Writer, refs []Reference) error {
	for _, ref := range refs {
		media := ref.Media
		if media == "" {
			media = DefaultMedia
		}
		_, err := fmt.Fprintf(w, "%s<link rel=\"stylesheet\" type=\"text/css\" href=\"%s\" media=\"%s\">\n",
			r.Indent, html.EscapeString(ref.Href()), html.EscapeString(media))
		if err != nil {
			return fmt.Errorf("failed to render style %s: %w", ref.URL, err)
		}
	}
	return nil
}

func (r HTMLRenderer) RenderScripts(w io.Writer, refs []Reference) error {
	for _, ref := range refs {
		_, err := fmt.Fprintf(w, "%s<script type=\"text/javascript\" src=\"%s\"></script>\n",
			r.Indent, html.EscapeString(ref.Href()))
		if err != nil {
			return fmt.Errorf("failed to render script %s: %w", ref.URL, err)
		}
	}
	return nil
}
