package log

import "sync"

// A Context adds its own fields to every log entry, for example the current
// CPU program counter.
type Context interface {
	AddLogContext(e *EntryZ)
}

var (
	ctxmu    sync.RWMutex
	contexts []Context
)

func AddContext(ctx Context) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	contexts = append(contexts, ctx)
}

func RemoveContext(ctx Context) {
	ctxmu.Lock()
	defer ctxmu.Unlock()
	for i, c := range contexts {
		if c == ctx {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

func addContexts(e *EntryZ) {
	ctxmu.RLock()
	defer ctxmu.RUnlock()
	for _, c := range contexts {
		c.AddLogContext(e)
	}
}
