package share

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	ErrNoDevice = errors.New("no android device connected")
	ErrNoTarget = errors.New("no foreground activity")
)

var (
	lookPathFn = exec.LookPath
	runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	}
)

const (
	ActionSend         = "android.intent.action.SEND"
	ActionSendMultiple = "android.intent.action.SEND_MULTIPLE"
	ExtraStream        = "android.intent.extra.STREAM"
)

// Activity is a running activity as reported by the activity manager.
type Activity struct {
	Package string
	Class   string
}

// Intent is the subset of an Android intent the share flow needs.
type Intent struct {
	Action    string
	Component string // empty means let the system pick
	MimeType  string
	Streams   []string
}

// Args renders the intent as `am start` arguments.
func (in Intent) Args() []string {
	args := []string{"start", "-a", in.Action}
	if in.Component != "" {
		args = append(args, "-n", in.Component)
	}
	if in.MimeType != "" {
		args = append(args, "-t", in.MimeType)
	}
	args = append(args, "--grant-read-uri-permission")
	switch len(in.Streams) {
	case 0:
	case 1:
		args = append(args, "--eu", ExtraStream, in.Streams[0])
	default:
		args = append(args, "--eua", ExtraStream, strings.Join(in.Streams, ","))
	}
	return args
}

// Device talks to one Android device through the adb binary.
type Device struct {
	ADB    string
	Serial string
}

func (d Device) adb(ctx context.Context, args ...string) ([]byte, error) {
	name := d.ADB
	if name == "" {
		name = "adb"
	}
	bin, err := lookPathFn(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrNoDevice, name)
	}
	if d.Serial != "" {
		args = append([]string{"-s", d.Serial}, args...)
	}
	out, err := runCommand(ctx, bin, args...)
	if err != nil {
		return out, fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Ready fails with ErrNoDevice unless adb reports the device online.
func (d Device) Ready(ctx context.Context) error {
	out, err := d.adb(ctx, "get-state")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if state := strings.TrimSpace(string(out)); state != "device" {
		return fmt.Errorf("%w: state %q", ErrNoDevice, state)
	}
	return nil
}

func (d Device) TopActivity(ctx context.Context) (Activity, error) {
	out, err := d.adb(ctx, "shell", "dumpsys", "activity", "activities")
	if err != nil {
		return Activity{}, err
	}
	a, ok := ParseResumedActivity(string(out))
	if !ok {
		return Activity{}, ErrNoTarget
	}
	return a, nil
}

func (d Device) Push(ctx context.Context, local, remote string) error {
	_, err := d.adb(ctx, "push", local, remote)
	return err
}

func (d Device) StartShare(ctx context.Context, in Intent) error {
	args := append([]string{"shell", "am"}, in.Args()...)
	out, err := d.adb(ctx, args...)
	if err != nil {
		return err
	}
	// am start reports failures on stdout with a zero exit code.
	if strings.Contains(string(out), "Error:") {
		return fmt.Errorf("am start: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

var resumedRe = regexp.MustCompile(`(?m)^\s*(?:mResumedActivity|ResumedActivity|topResumedActivity)[:=]\s*ActivityRecord\{\S+\s+\S+\s+([A-Za-z0-9_.]+)/([A-Za-z0-9_.$]+)`)

// ParseResumedActivity finds the resumed activity in `dumpsys activity
// activities` output. Relative class names (".ui.Main") are expanded with the
// package name.
func ParseResumedActivity(dumpsys string) (Activity, bool) {
	m := resumedRe.FindStringSubmatch(dumpsys)
	if m == nil {
		return Activity{}, false
	}
	cls := m[2]
	if strings.HasPrefix(cls, ".") {
		cls = m[1] + cls
	}
	return Activity{Package: m[1], Class: cls}, true
}
