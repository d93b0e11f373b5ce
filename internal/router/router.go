// Package router implements component C5: the APDU application router
// that multiplexes command/response traffic to the application currently
// selected by AID. It is the server-side generalization of the teacher's
// card.Reader.Select/SendAPDU pair: there, a client chooses which file on
// a remote card to address; here, the router itself owns the selection
// state and dispatches to an in-process handler.
package router

import (
	"cardkey/internal/apdu"
)

// MaxApplications is the spec §3 cap: "At most 8 applications."
const MaxApplications = 8

// MinAIDLen and MaxAIDLen bound a registered AID (spec §3).
const (
	MinAIDLen = 5
	MaxAIDLen = 16
)

// Handler processes a non-SELECT command for the application it belongs
// to and is wholly responsible for filling in resp.SW1/SW2 and resp.Body
// (spec §4.3 rule 3). Handlers may also be asked to produce a
// file-control-information template on SELECT via FCITemplate.
type Handler interface {
	// Handle processes a routed command.
	Handle(cmd apdu.Command, resp *apdu.Response)
	// FCITemplate returns the (opaque to the router) body to return on a
	// successful SELECT of this application.
	FCITemplate() []byte
}

type registration struct {
	aid     []byte
	handler Handler
}

// Router dispatches APDUs to registered applications by AID. It is not
// safe for concurrent use: spec §5 guarantees exactly one APDU in flight
// at a time, dispatched from a single cooperative loop.
type Router struct {
	apps    []registration
	current int // index into apps, or -1 if none selected
}

// New creates an empty Router with no current application.
func New() *Router {
	return &Router{current: -1}
}

// Register adds a handler for aid. Startup-only: duplicate AIDs and a
// table already at MaxApplications are rejected.
func (r *Router) Register(aid []byte, handler Handler) bool {
	if len(aid) < MinAIDLen || len(aid) > MaxAIDLen {
		return false
	}
	if len(r.apps) >= MaxApplications {
		return false
	}
	for _, a := range r.apps {
		if bytesEqual(a.aid, aid) {
			return false
		}
	}
	r.apps = append(r.apps, registration{aid: append([]byte(nil), aid...), handler: handler})
	return true
}

// Reset clears the current selection, as on power-on (spec §3).
func (r *Router) Reset() {
	r.current = -1
}

// CurrentAID returns the AID of the currently selected application, or
// nil if none is selected.
func (r *Router) CurrentAID() []byte {
	if r.current < 0 {
		return nil
	}
	return append([]byte(nil), r.apps[r.current].aid...)
}

// Dispatch implements spec §4.3's three dispatch rules.
func (r *Router) Dispatch(cmd apdu.Command) apdu.Response {
	var resp apdu.Response

	if cmd.IsSelect() {
		for i, a := range r.apps {
			if bytesEqual(a.aid, cmd.Data) {
				r.current = i
				resp.SetSW(apdu.SWSuccess)
				resp.Body = a.handler.FCITemplate()
				return resp
			}
		}
		// Unknown AID: current application is unchanged (spec invariant 6).
		resp.SetSW(apdu.SWFileNotFound)
		return resp
	}

	if r.current < 0 {
		resp.SetSW(apdu.SWFileNotFound)
		return resp
	}

	r.apps[r.current].handler.Handle(cmd, &resp)
	if resp.SW1 == 0 && resp.SW2 == 0 {
		resp.SetSW(apdu.SWInternalError)
	}
	if t, ok := r.apps[r.current].handler.(terminator); ok && t.Terminated() {
		r.current = -1
	}
	return resp
}

// terminator is implemented by applications that can enter a terminated
// sub-state (spec §3, §4.5's TERMINATE DF). When Handle leaves the
// application terminated, the router clears its current-application
// selection per spec's "reset ... when the active application enters a
// terminated state" — a fresh SELECT is then required before any further
// non-SELECT command can reach it.
type terminator interface {
	Terminated() bool
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
