package content

import (
	"bytes"
	"context"
	"image"
	"io"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/sorpv/sorpcube/internal/scene"
	"golang.org/x/sync/errgroup"
)

// AssetNames lists the assets to load. An empty Mesh selects the built-in cube.
type AssetNames struct {
	Texture        string
	Mesh           string
	VertexShader   string
	FragmentShader string
}

type Assets struct {
	Texture        *image.RGBA
	Mesh           *scene.Mesh
	VertexShader   []uint32
	FragmentShader []uint32
}

// ReadMesh decodes an OBJ mesh, picking up the material library of the same
// base name when one exists.
func (r *Resolver) ReadMesh(name string) (*scene.Mesh, error) {
	data, err := r.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var materials io.Reader
	mtl := name[:len(name)-len(path.Ext(name))] + ".mtl"
	if r.Exists(mtl) {
		mtlData, err := r.ReadFile(mtl)
		if err != nil {
			return nil, err
		}
		materials = bytes.NewReader(mtlData)
	}

	mesh, err := scene.DecodeOBJ(bytes.NewReader(data), materials)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s", name)
	}
	return mesh, nil
}

// LoadAssets decodes every asset concurrently. The first failure cancels the
// rest and is returned.
func (r *Resolver) LoadAssets(ctx context.Context, names AssetNames) (*Assets, error) {
	assets := &Assets{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		img, err := r.ReadImage(names.Texture)
		if err != nil {
			return err
		}
		assets.Texture = img
		return ctx.Err()
	})

	g.Go(func() error {
		if names.Mesh == "" {
			assets.Mesh = scene.Cube()
			return nil
		}

		mesh, err := r.ReadMesh(names.Mesh)
		if err != nil {
			return err
		}
		assets.Mesh = mesh
		return ctx.Err()
	})

	g.Go(func() error {
		code, err := r.ReadShader(names.VertexShader)
		if err != nil {
			return err
		}
		assets.VertexShader = code
		return nil
	})

	g.Go(func() error {
		code, err := r.ReadShader(names.FragmentShader)
		if err != nil {
			return err
		}
		assets.FragmentShader = code
		return nil
	})

	err := g.Wait()
	if err != nil {
		return nil, err
	}
	return assets, nil
}
