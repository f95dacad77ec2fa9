//go:build js
// +build js

// The background entry point: compiled with gopherjs to background.js
// and loaded as the extension's background script, where it runs the
// tab coordinator.
package main

import (
	"github.com/simukka/tabamp/background"
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/weblog"
)

func main() {
	cfg := chromeapi.LoadBundledConfig()
	c := background.New(
		chromeapi.NewChromeTabs(),
		chromeapi.NewChromeRuntime(),
		chromeapi.NewChromeStorage(),
		chromeapi.NewJSScheduler(),
		cfg,
	)
	c.Start()
	weblog.Debug("coordinator running")
}
