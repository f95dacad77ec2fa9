package content

import (
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/tabamp/chromeapi"
	"github.com/simukka/tabamp/config"
	"github.com/simukka/tabamp/sites"
	"github.com/simukka/tabamp/weblog"
)

// jsWatcher produces the element-discovery stream for one page. It
// combines every interception mechanism behind the Watcher interface:
// an initial scan (including open shadow roots), a MutationObserver,
// patched Audio/createElement constructors for elements that never
// enter the document, a capture-phase play listener as the safety net,
// and SPA navigation detection via history events plus an href poll.
type jsWatcher struct {
	cfg     config.Config
	sched   chromeapi.Scheduler
	handler sites.Handler

	// onInteract fires on any user gesture (autoplay unlock); onNavigate
	// fires on SPA route changes, before the new generation's scan.
	onInteract func()
	onNavigate func()

	onElement func(MediaElement)
	gen       int
	lastHref  string
	stopped   bool
	stops     []chromeapi.CancelFunc
}

// NewJSWatcher returns the DOM-backed watcher for the current page.
func NewJSWatcher(cfg config.Config, sched chromeapi.Scheduler, handler sites.Handler, onInteract, onNavigate func()) Watcher {
	if handler == nil {
		handler = sites.Default{}
	}
	return &jsWatcher{cfg: cfg, sched: sched, handler: handler, onInteract: onInteract, onNavigate: onNavigate}
}

func (w *jsWatcher) Start(onElement func(MediaElement)) {
	if w.onElement != nil {
		return
	}
	w.onElement = onElement
	w.lastHref = currentHref()
	w.observeMutations()
	w.patchConstructors()
	w.listenPlayEvents()
	w.listenInteraction()
	w.watchNavigation()
	w.scan()
	w.stops = append(w.stops, w.sched.Every(w.cfg.Timings.RescanIntervalMs, w.scan))
}

func (w *jsWatcher) Stop() {
	w.stopped = true
	for _, stop := range w.stops {
		stop()
	}
	w.stops = nil
}

func currentHref() string {
	return js.Global.Get("location").Get("href").String()
}

func (w *jsWatcher) generation() int { return w.gen }

// deliver hands one DOM node to the agent.
func (w *jsWatcher) deliver(o *js.Object) {
	if w.stopped || w.onElement == nil || o == nil || o == js.Undefined {
		return
	}
	w.onElement(wrapElement(o, w.generation))
}

func isMediaNode(o *js.Object) bool {
	if o == nil || o == js.Undefined {
		return false
	}
	t := o.Get("tagName")
	if t == nil || t == js.Undefined {
		return false
	}
	return t.String() == "AUDIO" || t.String() == "VIDEO"
}

// scan walks the page for media elements. Site handlers can scope the
// walk to their player containers; when no container matches yet (the
// player renders late on most SPAs) the whole document is scanned and
// the periodic rescan tries the scoped roots again.
func (w *jsWatcher) scan() {
	if w.stopped {
		return
	}
	doc := js.Global.Get("document")
	roots := w.handler.DiscoveryRoots()
	if len(roots) == 0 {
		w.scanNode(doc)
		return
	}
	matched := false
	for _, sel := range roots {
		found := doc.Call("querySelectorAll", sel)
		for i := 0; i < found.Length(); i++ {
			matched = true
			w.scanNode(found.Index(i))
		}
	}
	if !matched {
		w.scanNode(doc)
	}
}

// scanNode collects media elements under node, descending into open
// shadow roots. Closed shadow roots are unreachable; their media is
// still caught by the capture-phase play listener.
func (w *jsWatcher) scanNode(node *js.Object) {
	if isMediaNode(node) {
		w.deliver(node)
	}
	media := node.Call("querySelectorAll", "audio,video")
	for i := 0; i < media.Length(); i++ {
		w.deliver(media.Index(i))
	}
	all := node.Call("querySelectorAll", "*")
	for i := 0; i < all.Length(); i++ {
		if sr := all.Index(i).Get("shadowRoot"); sr != nil && sr != js.Undefined {
			w.scanNode(sr)
		}
	}
}

func (w *jsWatcher) observeMutations() {
	ctor := js.Global.Get("MutationObserver")
	if ctor == nil || ctor == js.Undefined {
		return
	}
	obs := ctor.New(func(records *js.Object, _ *js.Object) {
		for i := 0; i < records.Length(); i++ {
			added := records.Index(i).Get("addedNodes")
			for j := 0; j < added.Length(); j++ {
				node := added.Index(j)
				if isMediaNode(node) {
					w.deliver(node)
					continue
				}
				if q := node.Get("querySelectorAll"); q == nil || q == js.Undefined {
					continue
				}
				nested := node.Call("querySelectorAll", "audio,video")
				for k := 0; k < nested.Length(); k++ {
					w.deliver(nested.Index(k))
				}
			}
		}
	})
	opts := js.Global.Get("Object").New()
	opts.Set("childList", true)
	opts.Set("subtree", true)
	obs.Call("observe", js.Global.Get("document").Get("documentElement"), opts)
	w.stops = append(w.stops, func() { obs.Call("disconnect") })
}

// patchConstructors intercepts media elements created in script and
// possibly never inserted into the document: new Audio(...) and
// document.createElement("audio"/"video"). The replacement functions
// are built with the Function constructor so they run as plain page
// functions delegating to the captured originals.
func (w *jsWatcher) patchConstructors() {
	report := func(el *js.Object) { w.deliver(el) }

	if native := js.Global.Get("Audio"); native != nil && native != js.Undefined {
		err := jsTry(func() {
			wrap := js.Global.Get("Function").New("native", "report", `
				return function Audio(src) {
					var el = src === undefined ? new native() : new native(src);
					report(el);
					return el;
				};`)
			js.Global.Set("Audio", wrap.Invoke(native, report))
		})
		if err != nil {
			weblog.Debug("Audio constructor patch failed:", err)
		}
	}

	doc := js.Global.Get("document")
	if orig := doc.Get("createElement"); orig != nil && orig != js.Undefined {
		err := jsTry(func() {
			wrap := js.Global.Get("Function").New("orig", "report", `
				return function createElement(tag) {
					var el = orig.apply(document, arguments);
					var t = String(tag).toLowerCase();
					if (t === "audio" || t === "video") {
						report(el);
					}
					return el;
				};`)
			doc.Set("createElement", wrap.Invoke(orig, report))
		})
		if err != nil {
			weblog.Debug("createElement patch failed:", err)
		}
	}
}

// listenPlayEvents is the safety net: play events bubble through the
// capture phase even from elements discovery never saw (closed shadow
// roots, elements created before the content script ran).
func (w *jsWatcher) listenPlayEvents() {
	js.Global.Get("document").Call("addEventListener", "play", func(ev *js.Object) {
		if t := ev.Get("target"); isMediaNode(t) {
			w.deliver(t)
		}
	}, true)
}

// listenInteraction reports user gestures, which are what unlocks a
// suspended audio context.
func (w *jsWatcher) listenInteraction() {
	if w.onInteract == nil {
		return
	}
	doc := js.Global.Get("document")
	for _, ev := range []string{"click", "keydown", "touchstart"} {
		doc.Call("addEventListener", ev, func(*js.Object) { w.onInteract() }, true)
	}
}

// watchNavigation detects SPA route changes: history traversal fires
// popstate/hashchange, but pushState-based routers change the URL with
// no event at all, hence the poll.
func (w *jsWatcher) watchNavigation() {
	for _, ev := range []string{"popstate", "hashchange"} {
		js.Global.Call("addEventListener", ev, func(*js.Object) { w.checkNavigated() })
	}
	w.stops = append(w.stops, w.sched.Every(w.cfg.Timings.NavigationPollMs, w.checkNavigated))
}

func (w *jsWatcher) checkNavigated() {
	if w.stopped {
		return
	}
	href := currentHref()
	if href == w.lastHref {
		return
	}
	w.lastHref = href
	w.gen++
	weblog.Debug("in-page navigation:", href)
	if w.onNavigate != nil {
		w.onNavigate()
	}
	w.scan()
}
