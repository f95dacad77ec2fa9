//go:build js
// +build js

// The content entry point: compiled with gopherjs to content.js and
// injected into every page, where it runs the page audio agent.
package main

import (
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/content"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/sites"
)

func main() {
	cfg := chromeapi.LoadBundledConfig()
	loc := js.Global.Get("location")
	origin := loc.Get("origin").String()
	handler := sites.ForHostname(loc.Get("hostname").String())

	rt := chromeapi.NewChromeRuntime()
	sched := chromeapi.NewJSScheduler()

	notify := func(hasActiveAudio bool) {
		rt.SendMessage(protocol.New(protocol.MsgNotifyAudio,
			protocol.NotifyAudioRequest{HasActiveAudio: hasActiveAudio}), nil)
	}

	var agent *content.Agent
	watcher := content.NewJSWatcher(cfg, sched, handler,
		func() { agent.PokeResume() },
		func() { agent.Reset() },
	)
	agent = content.NewAgent(content.NewJSGraph(), watcher, notify, sched, cfg, handler, origin)

	rt.OnMessage(agent.HandleMessage)
	agent.Start()
}
