package engine

import "context"

// TextureLoader decodes a resolved raster source. It is called off the
// render path; results are applied by Engine.ApplyPending.
type TextureLoader interface {
	Load(ctx context.Context, source string) (width, height int, err error)
}

type textureResult struct {
	source        string
	width, height int
	err           error
}
