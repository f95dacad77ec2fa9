// Package weblog logs to the browser console from extension contexts.
// Host-side tooling uses zerolog instead; the console object is the only
// sink available inside the extension.
package weblog

import "github.com/gopherjs/gopherjs/js"

// Enabled gates debug-level output. Warnings and errors always log.
var Enabled = false

const prefix = "[tabamp]"

func console() *js.Object {
	// js.Global is nil when compiled natively (tests).
	if js.Global == nil {
		return nil
	}
	return js.Global.Get("console")
}

// Debug logs a message to the browser console if debug mode is enabled.
func Debug(args ...interface{}) {
	if c := console(); Enabled && c != nil {
		c.Call("log", append([]interface{}{prefix}, args...)...)
	}
}

// Warn logs a warning to the browser console.
func Warn(args ...interface{}) {
	if c := console(); c != nil {
		c.Call("warn", append([]interface{}{prefix}, args...)...)
	}
}

// Error logs an error to the browser console.
func Error(args ...interface{}) {
	if c := console(); c != nil {
		c.Call("error", append([]interface{}{prefix}, args...)...)
	}
}
