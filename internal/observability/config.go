package observability

import (
	"net/http"
	"net/http/pprof"
)

// Config captures opt-in debug toggles threaded through the server wiring.
type Config struct {
	// EnablePprofTrace mounts the net/http/pprof handlers under /debug/pprof.
	EnablePprofTrace bool
}

// Mount attaches the enabled debug handlers to the mux.
func (c Config) Mount(mux *http.ServeMux) {
	if !c.EnablePprofTrace {
		return
	}
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}
