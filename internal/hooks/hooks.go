// Package hooks runs the user's Lua script before a post is published.
//
// The script may define
//
//	function before_publish(post)
//	  -- post.title, post.content, post.tags
//	end
//
// The function may edit the table in place or return a replacement table.
// Returning false aborts publishing; an optional second return value is
// used as the reason. Lua errors abort publishing too.
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are loaded and the functions that load code from files or
// strings are removed. A global table "inkpost" offers log(message).
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	lua "github.com/yuin/gopher-lua"
)

var log = commonlog.GetLogger("inkpost.hooks")

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// HookName is the global function called before publishing.
const HookName = "before_publish"

// Errors returned by the runner.
var (
	ErrAborted = errors.New("publishing aborted by hook")
	ErrClosed  = errors.New("hook runner closed")
)

// Post is the part of a post a hook can change.
type Post struct {
	Title   string
	Content string
	Tags    []string
}

// Runner holds one loaded script. It is safe for concurrent use; calls are
// serialized.
type Runner struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each hook call.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Load runs the script at path once, registering its functions.
func Load(path string, opts ...Option) (*Runner, error) {
	r := newRunner(opts...)
	if err := r.L.DoFile(path); err != nil {
		r.L.Close()
		return nil, fmt.Errorf("loading hook script %s: %w", path, err)
	}
	return r, nil
}

// LoadString is Load for a script held in memory.
func LoadString(source string, opts ...Option) (*Runner, error) {
	r := newRunner(opts...)
	if err := r.L.DoString(source); err != nil {
		r.L.Close()
		return nil, fmt.Errorf("loading hook script: %w", err)
	}
	return r, nil
}

func newRunner(opts ...Option) *Runner {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	api := L.NewTable()
	L.SetField(api, "log", L.NewFunction(func(L *lua.LState) int {
		log.Info(L.CheckString(1))
		return 0
	}))
	L.SetGlobal("inkpost", api)

	r := &Runner{L: L, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Has reports whether the script defines the publish hook.
func (r *Runner) Has() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	_, ok := r.L.GetGlobal(HookName).(*lua.LFunction)
	return ok
}

// BeforePublish passes p through the hook. Without a hook p is returned
// unchanged.
func (r *Runner) BeforePublish(ctx context.Context, p Post) (Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return p, ErrClosed
	}

	fn, ok := r.L.GetGlobal(HookName).(*lua.LFunction)
	if !ok {
		return p, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	arg := toTable(r.L, p)
	if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, arg); err != nil {
		return p, fmt.Errorf("%s: %w", HookName, err)
	}
	ret, reason := r.L.Get(-2), r.L.Get(-1)
	r.L.Pop(2)

	switch v := ret.(type) {
	case *lua.LTable:
		arg = v
	case lua.LBool:
		if !bool(v) {
			if reason != lua.LNil {
				return p, fmt.Errorf("%w: %s", ErrAborted, reason.String())
			}
			return p, ErrAborted
		}
	}

	out, err := fromTable(arg)
	if err != nil {
		return p, fmt.Errorf("%s: %w", HookName, err)
	}
	log.Debug("hook applied", "title", out.Title, "tags", len(out.Tags))
	return out, nil
}

// Close releases the Lua state.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.L.Close()
	}
}

func toTable(L *lua.LState, p Post) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("title", lua.LString(p.Title))
	t.RawSetString("content", lua.LString(p.Content))
	tags := L.NewTable()
	for _, tag := range p.Tags {
		tags.Append(lua.LString(tag))
	}
	t.RawSetString("tags", tags)
	return t
}

func fromTable(t *lua.LTable) (Post, error) {
	var p Post
	var ok bool
	if p.Title, ok = stringField(t, "title"); !ok {
		return p, errors.New("title must be a string")
	}
	if p.Content, ok = stringField(t, "content"); !ok {
		return p, errors.New("content must be a string")
	}
	switch tags := t.RawGetString("tags").(type) {
	case *lua.LTable:
		n := tags.Len()
		for i := 1; i <= n; i++ {
			s, isStr := tags.RawGetInt(i).(lua.LString)
			if !isStr {
				return p, fmt.Errorf("tags[%d] must be a string", i)
			}
			p.Tags = append(p.Tags, string(s))
		}
	case *lua.LNilType:
	default:
		return p, errors.New("tags must be a list")
	}
	return p, nil
}

func stringField(t *lua.LTable, key string) (string, bool) {
	switch v := t.RawGetString(key).(type) {
	case lua.LString:
		return string(v), true
	case *lua.LNilType:
		return "", true
	}
	return "", false
}
