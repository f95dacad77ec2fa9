//go:build js
// +build js

// The popup entry point: compiled with gopherjs to popup.js and loaded
// by popup.html, where it renders the control surface.
package main

import (
	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/popup"
)

func main() {
	client := popup.NewClient(chromeapi.NewChromeRuntime())
	popup.NewPanel(client, chromeapi.NewChromeTabs()).Run()
}
