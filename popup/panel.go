package popup

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/protocol"
	"github.com/simukka/tabamp/volume"
	"github.com/simukka/tabamp/weblog"
)

//go:embed popup.gohtml
var popupHTML string

// panelData feeds the popup template. Tab titles and favicon URLs come
// from arbitrary pages, hence html/template.
type panelData struct {
	Volume      int
	Presets     []int
	ApplyDomain bool
	Tabs        []protocol.TabStatus
}

var presets = []int{0, 100, 200, 500}

// Panel renders the popup and forwards its controls to the coordinator.
type Panel struct {
	client      *Client
	tabs        chromeapi.Tabs
	activeTabID int
}

// NewPanel builds the popup UI controller.
func NewPanel(client *Client, tabs chromeapi.Tabs) *Panel {
	return &Panel{client: client, tabs: tabs}
}

// Run finds the active tab, renders the panel and subscribes to status
// changes for as long as the popup stays open.
func (p *Panel) Run() {
	p.client.OnAudioStatusChanged(p.reload)
	p.tabs.Query(func(tabs []chromeapi.TabInfo) {
		for _, t := range tabs {
			if t.Active {
				p.activeTabID = t.ID
				break
			}
		}
		p.reload()
	})
}

func (p *Panel) reload() {
	p.client.Volume(p.activeTabID, func(v volume.Percent) {
		p.client.TabAudioStatus(func(rows []protocol.TabStatus) {
			p.render(panelData{
				Volume:      int(v),
				Presets:     presets,
				ApplyDomain: p.applyDomainChecked(),
				Tabs:        rows,
			})
		})
	})
}

func (p *Panel) render(data panelData) {
	tmpl, err := template.New("popup").Parse(popupHTML)
	if err != nil {
		weblog.Error("popup template:", err)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		weblog.Error("popup template:", err)
		return
	}
	doc := js.Global.Get("document")
	doc.Get("body").Set("innerHTML", buf.String())
	p.attach(doc)
}

func (p *Panel) applyDomainChecked() bool {
	if js.Global == nil {
		return false
	}
	box := js.Global.Get("document").Call("getElementById", "apply-domain")
	if box == nil || box == js.Undefined {
		return false
	}
	return box.Get("checked").Bool()
}

func (p *Panel) attach(doc *js.Object) {
	slider := doc.Call("getElementById", "volume-slider")
	value := doc.Call("getElementById", "volume-value")

	setVolume := func(v int) {
		pct := volume.Clamp(volume.Percent(v))
		slider.Set("value", int(pct))
		value.Set("textContent", pct.String())
		p.client.SetVolume(p.activeTabID, pct, p.applyDomainChecked(), nil)
	}

	slider.Call("addEventListener", "input", func(e *js.Object) {
		setVolume(e.Get("target").Get("value").Int())
	})

	buttons := doc.Call("querySelectorAll", ".preset")
	for i := 0; i < buttons.Length(); i++ {
		btn := buttons.Index(i)
		btn.Call("addEventListener", "click", func(e *js.Object) {
			setVolume(e.Get("target").Call("getAttribute", "data-volume").Int())
		})
	}

	doc.Call("getElementById", "apply-all").Call("addEventListener", "click", func() {
		p.client.ApplyToAll(volume.Clamp(volume.Percent(slider.Get("value").Int())), func(bool) {
			p.reload()
		})
	})

	doc.Call("getElementById", "reset-all").Call("addEventListener", "click", func() {
		p.client.ResetAll(func(bool) {
			p.reload()
		})
	})
}
