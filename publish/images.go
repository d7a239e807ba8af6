package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"scpview/record"
	"scpview/render"
	"scpview/state"
)

// siteImagesDir is where item images are kept in record sources.
const siteImagesDir = "images"

// copyImage places item image next to the rendered page so that page relative
// image path resolves. Nothing is done when images are referenced by absolute
// location or image is already there and overwriting is not requested.
func copyImage(ctx context.Context, src record.Resources, rec *record.Record, page string, assets *render.Assets, env *state.LocalEnv, log *zap.Logger) error {
	cfg := &env.Cfg.Page.Images
	if !cfg.Copy || len(rec.Image) == 0 {
		return nil
	}
	if strings.Contains(cfg.Prefix, "://") || path.IsAbs(cfg.Prefix) {
		log.Debug("Images are referenced by absolute location, not copying", zap.String("prefix", cfg.Prefix))
		return nil
	}
	rel := filepath.FromSlash(path.Join(cfg.Prefix, rec.Image))
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("image reference leads outside of destination: %s", rec.Image)
	}

	target := filepath.Join(filepath.Dir(page), rel)
	if _, err := os.Stat(target); err == nil {
		if !env.Overwrite {
			log.Debug("Image already exists, skipping", zap.String("file", target))
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := src.ReadResource(ctx, path.Join(siteImagesDir, rec.Image))
	if err != nil {
		return fmt.Errorf("unable to read image %s: %w", rec.Image, err)
	}
	if data, err = assets.Prepare(rec.Image, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("unable to create image directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("unable to write image: %w", err)
	}
	log.Debug("Image copied", zap.String("file", target))
	return nil
}
