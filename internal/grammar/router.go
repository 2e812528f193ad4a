package grammar

import "github.com/dshills/inkpost/internal/document"

// Router delivers worker results on the main loop, discarding stale ones.
type Router struct {
	results <-chan Result
	current func() document.Version
	apply   func([]Match)

	applied   int
	discarded int
}

// NewRouter creates a router reading from results. current reports the
// document version at delivery time; apply receives accepted matches.
func NewRouter(results <-chan Result, current func() document.Version, apply func([]Match)) *Router {
	return &Router{
		results: results,
		current: current,
		apply:   apply,
	}
}

// Poll takes a pending result without blocking. It returns true if a
// result was applied. Poll must run on the main loop.
func (r *Router) Poll() bool {
	var res Result
	select {
	case res = <-r.results:
	default:
		return false
	}

	if res.Err != nil {
		log.Debug("grammar check failed", "version", uint64(res.Version), "error", res.Err.Error())
		r.discarded++
		return false
	}
	if cur := r.current(); res.Version != cur {
		log.Debug("stale grammar result discarded", "version", uint64(res.Version), "current", uint64(cur))
		r.discarded++
		return false
	}

	r.applied++
	r.apply(res.Matches)
	return true
}

// Stats returns how many results were applied and discarded.
func (r *Router) Stats() (applied, discarded int) {
	return r.applied, r.discarded
}
