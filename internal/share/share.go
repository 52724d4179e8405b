package share

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Target is the device side of a share. Device implements it over adb.
type Target interface {
	Ready(ctx context.Context) error
	TopActivity(ctx context.Context) (Activity, error)
	Push(ctx context.Context, local, remote string) error
	StartShare(ctx context.Context, in Intent) error
}

// Sharer picks the share entry point and sends files to it.
type Sharer struct {
	Target    Target
	Apps      []App
	RemoteDir string
	Logger    *zap.Logger
}

// File is a local sticker file and the name it gets on the device.
type File struct {
	Path string
	Name string
}

// Result describes where a share went. App is empty when the system chooser
// handled it.
type Result struct {
	App      string   `json:"app,omitempty"`
	Activity Activity `json:"activity"`
	MimeType string   `json:"mime_type"`
	Remote   []string `json:"remote"`
}

func NewSharer(target Target, remoteDir string, logger *zap.Logger) *Sharer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sharer{Target: target, Apps: BuiltinApps(), RemoteDir: remoteDir, Logger: logger}
}

// Share sends files to the app in the foreground, or to the chooser when the
// foreground app is not one of s.Apps.
func (s *Sharer) Share(ctx context.Context, files []File) (*Result, error) {
	if err := s.Target.Ready(ctx); err != nil {
		return nil, err
	}
	top, err := s.Target.TopActivity(ctx)
	if err != nil && !errors.Is(err, ErrNoTarget) {
		return nil, err
	}
	app, ok := matchApp(s.Apps, top.Package)
	if !ok {
		app = App{}
	}
	return s.send(ctx, app, top, files)
}

// ShareTo sends files to app regardless of what is in the foreground.
func (s *Sharer) ShareTo(ctx context.Context, app App, files []File) (*Result, error) {
	if err := s.Target.Ready(ctx); err != nil {
		return nil, err
	}
	return s.send(ctx, app, Activity{}, files)
}

func (s *Sharer) send(ctx context.Context, app App, top Activity, files []File) (*Result, error) {
	if len(files) == 0 {
		return nil, errors.New("share: no files")
	}

	res := &Result{App: app.Name, Activity: top}
	var mimes []string
	for _, f := range files {
		mt, err := mimetype.DetectFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("share: detect %s: %w", f.Path, err)
		}
		mimes = append(mimes, mt.String())

		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		remote := path.Join(s.remoteDir(), name+extensionIfMissing(name, mt))
		if err := s.Target.Push(ctx, f.Path, remote); err != nil {
			return nil, fmt.Errorf("share: push %s: %w", f.Path, err)
		}
		res.Remote = append(res.Remote, remote)
	}
	res.MimeType = commonMime(mimes)

	in := Intent{Action: ActionSend, MimeType: res.MimeType}
	if len(res.Remote) > 1 {
		in.Action = ActionSendMultiple
	}
	if app.PackageName != "" {
		in.Component = app.Component()
	}
	for _, r := range res.Remote {
		in.Streams = append(in.Streams, "file://"+r)
	}

	if err := s.Target.StartShare(ctx, in); err != nil {
		return nil, fmt.Errorf("share: start %s: %w", targetName(app), err)
	}
	s.Logger.Info("shared stickers",
		zap.String("target", targetName(app)),
		zap.String("foreground", top.Package),
		zap.Int("files", len(files)),
	)
	return res, nil
}

func (s *Sharer) remoteDir() string {
	if s.RemoteDir == "" {
		return "/sdcard/Pictures/Rays"
	}
	return s.RemoteDir
}

func targetName(app App) string {
	if app.Name == "" {
		return "chooser"
	}
	return app.Name
}

func extensionIfMissing(name string, mt *mimetype.MIME) string {
	if filepath.Ext(name) != "" {
		return ""
	}
	return mt.Extension()
}

// commonMime returns the shared type of all files, "image/*" when they are
// different images, and "*/*" otherwise.
func commonMime(mimes []string) string {
	first := mimes[0]
	same, images := true, true
	for _, m := range mimes {
		if m != first {
			same = false
		}
		if !strings.HasPrefix(m, "image/") {
			images = false
		}
	}
	switch {
	case same:
		return first
	case images:
		return "image/*"
	default:
		return "*/*"
	}
}
