// Package minify provides the style and script minifiers used by the
// assetpack command, backed by tdewolff/minify.
package minify

import (
	"fmt"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	styleType  = "text/css"
	scriptType = "application/javascript"
)

var m = newMinifier()

func newMinifier() *tdminify.M {
	m := tdminify.New()
	m.AddFunc(styleType, css.Minify)
	m.AddFunc(scriptType, js.Minify)
	return m
}

// Style minifies CSS. It has the assetpack.MinifyFunc signature.
func Style(content []byte) ([]byte, error) {
	out, err := m.Bytes(styleType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to minify css: %w", err)
	}
	return out, nil
}

// Script minifies JavaScript. It has the assetpack.MinifyFunc signature.
func Script(content []byte) ([]byte, error) {
	out, err := m.Bytes(scriptType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to minify js: %w", err)
	}
	return out, nil
}
