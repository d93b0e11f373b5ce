// Package conformance runs the spec §8 end-to-end scenarios (S1-S6)
// against an in-process router+applications stack, adapted from the
// teacher's testing package orchestrator — there, a TestSuite driving a
// physical card.Reader through 3GPP scenarios; here, driving
// router.Router.Dispatch directly since there is no transport between
// this process and the applications it hosts.
package conformance

import (
	"fmt"
	"time"

	"cardkey/internal/apdu"
	"cardkey/internal/cryptoprim"
	"cardkey/internal/flash"
	"cardkey/internal/mgmt"
	"cardkey/internal/openpgp"
	"cardkey/internal/piv"
	"cardkey/internal/router"
	"cardkey/internal/store"
)

// Result is a single scenario's outcome (teacher's TestResult lineage).
type Result struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
	Error    string
	Duration time.Duration
}

// Summary aggregates scenario results (teacher's TestSummary lineage).
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
}

// Suite runs each scenario against its own freshly built fixture (flash,
// store, router with PIV+OpenPGP+mgmt registered) and records the results.
type Suite struct {
	Results []Result
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// fixture is a freshly mounted, freshly wired stack for one scenario —
// scenarios must not share state, mirroring spec §8's "for all inputs"
// framing of each invariant.
type fixture struct {
	r        *router.Router
	s        *store.Store
	flashDev *flash.Sim
	entropy  *seqEntropy
}

type seqEntropy struct{ b byte }

func (e *seqEntropy) Read(buf []byte) error {
	for i := range buf {
		e.b++
		buf[i] = e.b
	}
	return nil
}

func newFixture() *fixture {
	f := flash.NewSim(store.MinFlashSize)
	ent := &seqEntropy{}
	s, err := store.Mount(f, ent, store.MinFlashSize)
	if err != nil {
		panic(fmt.Sprintf("conformance fixture: mount failed: %v", err))
	}

	drbg := cryptoprim.NewDRBG(ent)
	if !drbg.IsOK() {
		panic("conformance fixture: drbg seed failed")
	}

	r := router.New()
	r.Register(piv.AID, piv.New(drbg.Value))
	r.Register(openpgp.AID, openpgp.New(drbg.Value))
	r.Register(mgmt.AID, mgmt.New(mgmt.Info{SupportedUSB: 0x03, EnabledUSB: 0x03}))
	return &fixture{r: r, s: s, flashDev: f, entropy: ent}
}

func (fx *fixture) dispatch(cla, ins, p1, p2 byte, data []byte) apdu.Response {
	return fx.r.Dispatch(apdu.Command{CLA: cla, INS: ins, P1: p1, P2: p2, Data: data, Le: -1})
}

func (fx *fixture) selectAID(aid []byte) apdu.Response {
	return fx.dispatch(0x00, 0xA4, 0x04, 0x00, aid)
}

// RunAll executes every registered scenario and records results.
func (s *Suite) RunAll() {
	for _, sc := range scenarios {
		start := time.Now()
		res := Result{Name: sc.name, Expected: sc.expected}
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.Error = fmt.Sprintf("panic: %v", r)
				}
			}()
			actual, passed := sc.run(newFixture())
			res.Actual = actual
			res.Passed = passed && res.Error == ""
		}()
		res.Duration = time.Since(start)
		s.Results = append(s.Results, res)
	}
}

// Summary computes the aggregate outcome.
func (s *Suite) Summary() Summary {
	var sum Summary
	for _, r := range s.Results {
		sum.Total++
		sum.Duration += r.Duration
		if r.Passed {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}
	return sum
}
