// Package host renders widget plans to disk for desktop widget shells.
// Every instance gets widget-<id>.yaml and, when the plan carries cover
// art, widget-<id>-cover.png beside it.
package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/genricoloni/mucwidget/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of one rendered widget
type Document struct {
	domain.RenderPlan `yaml:",inline"`
	MinHeight         int       `yaml:"min_height"`
	CoverFile         string    `yaml:"cover_file,omitempty"`
	UpdatedAt         time.Time `yaml:"updated_at"`
}

// FileHost implements domain.WidgetHost on the local filesystem
type FileHost struct {
	logger    *zap.Logger
	dir       string
	mu        sync.RWMutex
	instances map[int]domain.WidgetInstance
	now       func() time.Time
}

// NewFileHost creates the output directory and registers the configured instances
func NewFileHost(logger *zap.Logger, cfg *config.AppConfig) (*FileHost, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	h := &FileHost{
		logger:    logger,
		dir:       cfg.OutputDir,
		instances: make(map[int]domain.WidgetInstance, len(cfg.Instances)),
		now:       time.Now,
	}
	for _, inst := range cfg.Instances {
		h.instances[inst.ID] = inst
	}
	h.restoreSizes()

	logger.Info("Widget host ready",
		zap.String("dir", h.dir),
		zap.Int("instances", len(h.instances)))
	return h, nil
}

// Instances returns the placed widgets ordered by id
func (h *FileHost) Instances(ctx context.Context) ([]domain.WidgetInstance, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.WidgetInstance, 0, len(h.instances))
	for _, inst := range h.instances {
		out = append(out, inst)
	}
	slices.SortFunc(out, func(a, b domain.WidgetInstance) int { return a.ID - b.ID })
	return out, nil
}

// Resize records a new minimum height for an instance. Unknown ids are added.
// Sizes survive restarts through sizes.yaml.
func (h *FileHost) Resize(id, minHeight int) domain.WidgetInstance {
	h.mu.Lock()
	defer h.mu.Unlock()

	inst := domain.WidgetInstance{ID: id, MinHeight: minHeight}
	h.instances[id] = inst

	sizes := make(map[int]int, len(h.instances))
	for _, in := range h.instances {
		sizes[in.ID] = in.MinHeight
	}
	if err := h.saveSizes(sizes); err != nil {
		h.logger.Warn("Failed to persist widget sizes", zap.Error(err))
	}
	return inst
}

// SizesPath is where resized heights are kept between runs
func (h *FileHost) SizesPath() string {
	return filepath.Join(h.dir, "sizes.yaml")
}

func (h *FileHost) saveSizes(sizes map[int]int) error {
	data, err := yaml.Marshal(sizes)
	if err != nil {
		return fmt.Errorf("failed to encode sizes: %w", err)
	}
	return writeAtomic(h.SizesPath(), data)
}

func (h *FileHost) restoreSizes() {
	data, err := os.ReadFile(h.SizesPath())
	if err != nil {
		return
	}

	var sizes map[int]int
	if err := yaml.Unmarshal(data, &sizes); err != nil {
		h.logger.Warn("Ignoring unreadable sizes file", zap.Error(err))
		return
	}
	for id, minHeight := range sizes {
		if id > 0 && minHeight > 0 {
			h.instances[id] = domain.WidgetInstance{ID: id, MinHeight: minHeight}
		}
	}
}

// Instance looks up one placed widget
func (h *FileHost) Instance(id int) (domain.WidgetInstance, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	inst, ok := h.instances[id]
	return inst, ok
}

// UpdateWidget replaces the files of one instance. Readers never see a
// partially written document.
func (h *FileHost) UpdateWidget(ctx context.Context, instanceID int, plan domain.RenderPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := Document{
		RenderPlan: plan,
		UpdatedAt:  h.now().UTC(),
	}
	if inst, ok := h.Instance(instanceID); ok {
		doc.MinHeight = inst.MinHeight
	}

	if plan.Cover.Kind == domain.CoverBitmap && plan.Cover.Bitmap != nil {
		coverPath := h.CoverPath(instanceID)
		if err := imaging.Save(plan.Cover.Bitmap, coverPath); err != nil {
			return fmt.Errorf("failed to save cover: %w", err)
		}
		doc.CoverFile = filepath.Base(coverPath)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	if err := writeAtomic(h.DocumentPath(instanceID), data); err != nil {
		return err
	}

	h.logger.Debug("Widget updated",
		zap.Int("instance", instanceID),
		zap.String("layout", string(plan.Layout)),
		zap.String("cover", string(plan.Cover.Kind)))
	return nil
}

// Load reads back the document of one instance
func (h *FileHost) Load(instanceID int) (Document, error) {
	var doc Document
	data, err := os.ReadFile(h.DocumentPath(instanceID))
	if err != nil {
		return doc, fmt.Errorf("failed to read widget %d: %w", instanceID, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to decode widget %d: %w", instanceID, err)
	}
	return doc, nil
}

// DocumentPath is where the plan of an instance is written
func (h *FileHost) DocumentPath(instanceID int) string {
	return filepath.Join(h.dir, fmt.Sprintf("widget-%d.yaml", instanceID))
}

// CoverPath is where the cover bitmap of an instance is written
func (h *FileHost) CoverPath(instanceID int) string {
	return filepath.Join(h.dir, fmt.Sprintf("widget-%d-cover.png", instanceID))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".widget-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
