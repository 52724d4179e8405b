// Package share sends stickers into chat apps on a connected Android device.
//
// The device is driven over adb: the foreground activity decides which app
// gets the sticker, the file is pushed to shared storage and a SEND intent is
// started against that app's share activity. When no known app is in front
// the system chooser opens instead.
package share

import "strings"

// App is a chat app with a dedicated share entry point.
type App struct {
	Name        string
	PackageName string
	// MatchPrefix selects the app by foreground package. Defaults to
	// PackageName when empty.
	MatchPrefix string
	ClassName   string
}

func (a App) Matches(pkg string) bool {
	prefix := a.MatchPrefix
	if prefix == "" {
		prefix = a.PackageName
	}
	return prefix != "" && strings.HasPrefix(pkg, prefix)
}

// Component is the "package/class" form am start takes.
func (a App) Component() string {
	return a.PackageName + "/" + a.ClassName
}

var (
	WeChat = App{
		Name:        "wechat",
		PackageName: "com.tencent.mm",
		ClassName:   "com.tencent.mm.ui.tools.ShareImgUI",
	}
	QQ = App{
		Name:        "qq",
		PackageName: "com.tencent.mobileqq",
		ClassName:   "com.tencent.mobileqq.activity.JumpActivity",
	}
	Telegram = App{
		Name:        "telegram",
		PackageName: "org.telegram.messenger",
		MatchPrefix: "org.telegram",
		ClassName:   "org.telegram.ui.LaunchActivity",
	}
)

// BuiltinApps returns the apps Rays knows how to target, in match order.
func BuiltinApps() []App {
	return []App{WeChat, QQ, Telegram}
}

// AppByName finds a built-in app by its short name.
func AppByName(name string) (App, bool) {
	for _, a := range BuiltinApps() {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return App{}, false
}

func matchApp(apps []App, pkg string) (App, bool) {
	for _, a := range apps {
		if a.Matches(pkg) {
			return a, true
		}
	}
	return App{}, false
}
