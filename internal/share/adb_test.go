package share

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetADBSeams(t *testing.T) {
	t.Helper()
	oldLook, oldRun := lookPathFn, runCommand
	t.Cleanup(func() {
		lookPathFn = oldLook
		runCommand = oldRun
	})
	lookPathFn = func(name string) (string, error) { return "/opt/" + name, nil }
}

const dumpsysOld = `
ACTIVITY MANAGER ACTIVITIES (dumpsys activity activities)
  Stack #1:
    Running activities (most recent first):
      TaskRecord{1 #12 A=com.tencent.mm U=0 sz=1}
  mResumedActivity: ActivityRecord{4f2c1 u0 com.tencent.mm/.ui.LauncherUI t12}
  mFocusedActivity: ActivityRecord{4f2c1 u0 com.tencent.mm/.ui.LauncherUI t12}
`

const dumpsysNew = `
  Display #0 (activities from top to bottom):
    * Task{8a1 #31 type=standard A=10123:org.telegram.messenger}
      topResumedActivity=ActivityRecord{c0ffee u0 org.telegram.messenger/org.telegram.ui.LaunchActivity t31}
    ResumedActivity: ActivityRecord{c0ffee u0 org.telegram.messenger/org.telegram.ui.LaunchActivity t31}
`

func TestParseResumedActivity(t *testing.T) {
	a, ok := ParseResumedActivity(dumpsysOld)
	require.True(t, ok)
	assert.Equal(t, Activity{Package: "com.tencent.mm", Class: "com.tencent.mm.ui.LauncherUI"}, a)

	a, ok = ParseResumedActivity(dumpsysNew)
	require.True(t, ok)
	assert.Equal(t, "org.telegram.messenger", a.Package)
	assert.Equal(t, "org.telegram.ui.LaunchActivity", a.Class)

	_, ok = ParseResumedActivity("nothing here")
	assert.False(t, ok)
}

func TestDeviceCommands(t *testing.T) {
	resetADBSeams(t)
	var calls []string
	runCommand = func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		switch {
		case len(args) > 2 && args[2] == "get-state":
			return []byte("device\n"), nil
		case len(args) > 3 && args[3] == "dumpsys":
			return []byte(dumpsysOld), nil
		}
		return []byte("Starting: Intent { act=android.intent.action.SEND }"), nil
	}

	d := Device{ADB: "adb", Serial: "emulator-5554"}
	ctx := context.Background()
	require.NoError(t, d.Ready(ctx))

	top, err := d.TopActivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "com.tencent.mm", top.Package)

	require.NoError(t, d.Push(ctx, "/tmp/a.png", "/sdcard/Rays/a.png"))
	require.NoError(t, d.StartShare(ctx, Intent{
		Action:    ActionSend,
		Component: WeChat.Component(),
		MimeType:  "image/png",
		Streams:   []string{"file:///sdcard/Rays/a.png"},
	}))

	assert.Equal(t, []string{
		"/opt/adb -s emulator-5554 get-state",
		"/opt/adb -s emulator-5554 shell dumpsys activity activities",
		"/opt/adb -s emulator-5554 push /tmp/a.png /sdcard/Rays/a.png",
		"/opt/adb -s emulator-5554 shell am start -a android.intent.action.SEND -n com.tencent.mm/com.tencent.mm.ui.tools.ShareImgUI -t image/png --grant-read-uri-permission --eu android.intent.extra.STREAM file:///sdcard/Rays/a.png",
	}, calls)
}

func TestDeviceNotReady(t *testing.T) {
	resetADBSeams(t)
	runCommand = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("error: no devices/emulators found"), errors.New("exit status 1")
	}

	err := Device{}.Ready(context.Background())
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestStartShareReportsAmError(t *testing.T) {
	resetADBSeams(t)
	runCommand = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Error: Activity class {x/y} does not exist."), nil
	}

	err := Device{}.StartShare(context.Background(), Intent{Action: ActionSend})
	assert.Error(t, err)
}

func TestIntentArgsMultiple(t *testing.T) {
	in := Intent{Action: ActionSendMultiple, MimeType: "image/*", Streams: []string{"file:///a", "file:///b"}}
	assert.Equal(t, []string{
		"start", "-a", ActionSendMultiple, "-t", "image/*", "--grant-read-uri-permission",
		"--eua", ExtraStream, "file:///a,file:///b",
	}, in.Args())
}
