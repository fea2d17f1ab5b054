// Package app provides the editor state, its actions and events.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vecdraw/internal/codec"
	"vecdraw/internal/config"
	"vecdraw/internal/library"
	"vecdraw/internal/logging"
	"vecdraw/internal/render"
	"vecdraw/internal/scene"
	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
)

// ErrNoLibrary is returned by snapshot actions when no library is attached.
var ErrNoLibrary = errors.New("no drawing library")

// selfWriteGrace is how long after saving a change to the drawing file is
// attributed to the editor itself.
const selfWriteGrace = time.Second

// State holds the drawing being edited and the actions that change it.
// Actions must run on the UI thread; only the file watcher calls in from
// another goroutine.
type State struct {
	mu sync.RWMutex

	Config config.Config

	Layer    *render.Layer
	Registry *scene.Registry
	Engine   *scene.Engine

	// Drawing file
	FilePath string
	Modified bool

	library   *library.Library
	watcher   *FileWatcher
	lastWrite time.Time

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDrawingLoaded EventType = iota
	EventDrawingSaved
	EventSceneChanged
	EventModified
	EventFileChanged
	EventSnapshotSaved
)

func (e EventType) String() string {
	switch e {
	case EventDrawingLoaded:
		return "drawing-loaded"
	case EventDrawingSaved:
		return "drawing-saved"
	case EventSceneChanged:
		return "scene-changed"
	case EventModified:
		return "modified"
	case EventFileChanged:
		return "file-changed"
	case EventSnapshotSaved:
		return "snapshot-saved"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty drawing with the given configuration.
func NewState(cfg config.Config) *State {
	layer := render.NewLayer()
	reg := scene.NewRegistry(layer)
	return &State{
		Config:    cfg,
		Layer:     layer,
		Registry:  reg,
		Engine:    scene.NewEngine(reg),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	logging.Logger().Debug("event", "type", event.String())
	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the drawing as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.Modified = modified
	s.Emit(EventModified, modified)
}

func (s *State) sceneChanged() {
	s.SetModified(true)
	s.Emit(EventSceneChanged, s.Registry.Len())
}

// AttachLibrary sets the snapshot store used by the snapshot actions.
func (s *State) AttachLibrary(lib *library.Library) {
	s.library = lib
}

// Close stops file watching and closes the library.
func (s *State) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
		s.watcher = nil
	}
	if s.library != nil {
		errs = append(errs, s.library.Close())
		s.library = nil
	}
	return errors.Join(errs...)
}

// AddShape adds the default shape of kind and selects it.
func (s *State) AddShape(kind shape.Kind) *scene.Entry {
	e := s.Registry.Add(shape.Default(kind, s.Config.DefaultFill))
	s.Layer.Select(e.Handle)
	s.sceneChanged()
	return e
}

// RemoveSelected removes the selected shapes.
func (s *State) RemoveSelected() int {
	sel := s.Registry.Selected()
	for _, e := range sel {
		s.Registry.Remove(e)
	}
	if len(sel) > 0 {
		logging.Logger().Info("removed shapes", "count", len(sel))
		s.sceneChanged()
	}
	return len(sel)
}

// ClearAll removes every shape.
func (s *State) ClearAll() {
	if s.Registry.Len() == 0 {
		return
	}
	s.Registry.Clear()
	s.sceneChanged()
}

// RecolorSelected fills the selection and its groups with c.
func (s *State) RecolorSelected(c colorutil.RGB) int {
	n := s.Engine.Recolor(s.Registry.Selected(), c)
	if n > 0 {
		s.sceneChanged()
	}
	return n
}

// RotateSelected rotates the selection and its groups by degrees.
func (s *State) RotateSelected(degrees float64) int {
	n := s.Engine.Rotate(s.Registry.Selected(), degrees)
	if n > 0 {
		s.sceneChanged()
	}
	return n
}

// ScaleSelected scales the selection and its groups by factor, which must
// lie in the configured range.
func (s *State) ScaleSelected(factor float64) (int, error) {
	if factor < s.Config.ScaleMin || factor > s.Config.ScaleMax {
		return 0, fmt.Errorf("%w: %v outside [%v, %v]", scene.ErrInvalidScale, factor, s.Config.ScaleMin, s.Config.ScaleMax)
	}
	n, err := s.Engine.Scale(s.Registry.Selected(), factor)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.sceneChanged()
	}
	return n, nil
}

// GroupSelected puts the selected shapes in one new group.
func (s *State) GroupSelected() (shape.GroupID, bool) {
	id, ok := s.Engine.Group(s.Registry.Selected())
	if ok {
		s.sceneChanged()
	}
	return id, ok
}

// UngroupSelected removes the selected shapes from their groups.
func (s *State) UngroupSelected() int {
	n := s.Engine.Ungroup(s.Registry.Selected())
	if n > 0 {
		s.sceneChanged()
	}
	return n
}

// NewDrawing discards the current drawing.
func (s *State) NewDrawing() {
	s.Registry.Clear()
	s.FilePath = ""
	s.stopWatching()
	s.SetModified(false)
	s.Emit(EventSceneChanged, 0)
}

// SaveDrawing writes the drawing to path and makes it the current file.
func (s *State) SaveDrawing(path string) error {
	records := codec.Encode(s.Registry.All())

	s.mu.Lock()
	s.lastWrite = time.Now()
	s.mu.Unlock()

	if err := codec.WriteFile(path, records); err != nil {
		return fmt.Errorf("save drawing: %w", err)
	}
	s.FilePath = path
	s.SetModified(false)
	s.watch(path)
	logging.Logger().Info("drawing saved", "path", path, "shapes", len(records))
	s.Emit(EventDrawingSaved, path)
	return nil
}

// LoadDrawing replaces the drawing with the contents of path. The current
// drawing is kept if the file cannot be read.
func (s *State) LoadDrawing(path string) (codec.Result, error) {
	res, err := codec.ReadFile(path)
	if err != nil {
		return codec.Result{}, fmt.Errorf("load drawing: %w", err)
	}
	s.Registry.Clear()
	codec.Apply(s.Registry, res)
	s.FilePath = path
	s.SetModified(false)
	s.watch(path)
	logging.Logger().Info("drawing loaded", "path", path, "shapes", len(res.Shapes), "skipped", len(res.Skipped))
	s.Emit(EventDrawingLoaded, path)
	s.Emit(EventSceneChanged, s.Registry.Len())
	return res, nil
}

// ImportDrawing appends the shapes of path to the current drawing.
func (s *State) ImportDrawing(path string) (codec.Result, error) {
	res, err := codec.ReadFile(path)
	if err != nil {
		return codec.Result{}, fmt.Errorf("import drawing: %w", err)
	}
	added := codec.Apply(s.Registry, res)
	if len(added) > 0 {
		s.sceneChanged()
	}
	return res, nil
}

// ExportPNG renders the drawing at the configured canvas size to path.
func (s *State) ExportPNG(path string) error {
	var buf bytes.Buffer
	if err := s.Layer.WritePNG(&buf, s.Config.CanvasWidth, s.Config.CanvasHeight); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	logging.Logger().Info("png exported", "path", path)
	return nil
}

// SaveSnapshot stores the drawing in the library under name.
func (s *State) SaveSnapshot(ctx context.Context, name string) error {
	if s.library == nil {
		return ErrNoLibrary
	}
	data, err := codec.Marshal(codec.Encode(s.Registry.All()))
	if err != nil {
		return err
	}
	if err := s.library.Put(ctx, name, data, s.Registry.Len()); err != nil {
		return err
	}
	s.Emit(EventSnapshotSaved, name)
	return nil
}

// LoadSnapshot replaces the drawing with the snapshot called name.
func (s *State) LoadSnapshot(ctx context.Context, name string) (codec.Result, error) {
	if s.library == nil {
		return codec.Result{}, ErrNoLibrary
	}
	snap, err := s.library.Get(ctx, name)
	if err != nil {
		return codec.Result{}, err
	}
	records, err := codec.Unmarshal(snap.Data)
	if err != nil {
		return codec.Result{}, fmt.Errorf("snapshot %q: %w", name, err)
	}
	res, err := codec.Decode(records)
	if err != nil {
		return codec.Result{}, fmt.Errorf("snapshot %q: %w", name, err)
	}
	s.Registry.Clear()
	codec.Apply(s.Registry, res)
	s.FilePath = ""
	s.stopWatching()
	s.SetModified(true)
	s.Emit(EventDrawingLoaded, name)
	s.Emit(EventSceneChanged, s.Registry.Len())
	return res, nil
}

// ListSnapshots returns the library contents, newest first.
func (s *State) ListSnapshots(ctx context.Context) ([]library.Snapshot, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	return s.library.List(ctx)
}

// DeleteSnapshot removes the snapshot called name.
func (s *State) DeleteSnapshot(ctx context.Context, name string) error {
	if s.library == nil {
		return ErrNoLibrary
	}
	return s.library.Delete(ctx, name)
}

// DisplayName returns the file name of the drawing for the title bar.
func (s *State) DisplayName() string {
	name := "Untitled"
	if s.FilePath != "" {
		name = filepath.Base(s.FilePath)
	}
	if s.Modified {
		name += " *"
	}
	return name
}

func (s *State) watch(path string) {
	if !s.Config.WatchFiles {
		return
	}
	if s.watcher != nil && s.watcher.Path() == filepath.Clean(path) {
		return
	}
	s.stopWatching()
	w, err := NewFileWatcher(path, s.fileChanged)
	if err != nil {
		logging.Logger().Warn("cannot watch drawing", "path", path, "err", err)
		return
	}
	s.watcher = w
}

func (s *State) stopWatching() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Close(); err != nil {
		logging.Logger().Warn("closing file watcher", "err", err)
	}
	s.watcher = nil
}

// fileChanged runs on the watcher goroutine.
func (s *State) fileChanged(path string) {
	s.mu.RLock()
	own := time.Since(s.lastWrite) < selfWriteGrace
	s.mu.RUnlock()
	if own {
		return
	}
	logging.Logger().Info("drawing changed on disk", "path", path)
	s.Emit(EventFileChanged, path)
}
