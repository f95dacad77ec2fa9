package chromeapi

import (
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/weblog"
)

// LoadBundledConfig reads the timings.json packed next to the compiled
// scripts, falling back to the built-in defaults when the file is
// absent or broken. The fetch is synchronous: it runs once at context
// startup, before any timer is armed.
func LoadBundledConfig() config.Config {
	raw, ok := fetchBundled("timings.json")
	if !ok {
		return config.Default()
	}
	cfg, err := config.Parse([]byte(raw))
	if err != nil {
		weblog.Warn("timings.json broken, using defaults:", err)
	}
	return cfg
}

func fetchBundled(name string) (body string, ok bool) {
	if js.Global == nil {
		return "", false
	}
	root := chromeRoot()
	if root == nil || root == js.Undefined {
		return "", false
	}
	defer func() {
		if recover() != nil {
			body, ok = "", false
		}
	}()
	url := root.Get("runtime").Call("getURL", name).String()
	xhr := js.Global.Get("XMLHttpRequest").New()
	xhr.Call("open", "GET", url, false)
	xhr.Call("send")
	if xhr.Get("status").Int() != 200 {
		return "", false
	}
	return xhr.Get("responseText").String(), true
}
