package log

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// stackHook attaches the caller stack to error and higher level events.
type stackHook struct{}

func (h *stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level < zerolog.ErrorLevel {
		return
	}

	arr := zerolog.Arr()
	for _, f := range frames(5) {
		arr.Dict(zerolog.Dict().
			Int("line", f.Line).
			Str("file", f.File).
			Str("function", f.Function),
		)
	}
	e.Array("stack", arr)
}

type frame struct {
	Line     int
	File     string
	Function string
}

// frames skips runtime internals and zerolog's own frames so the first
// entry is the logging call site.
func frames(skip int) []frame {
	const depth = 64
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return nil
	}

	out := make([]frame, 0, n)
	iter := runtime.CallersFrames(pcs[:n])
	for {
		f, more := iter.Next()
		if !strings.HasPrefix(f.Function, "github.com/rs/zerolog") && !strings.HasPrefix(f.Function, "runtime.") {
			out = append(out, frame{
				Line:     f.Line,
				File:     f.File,
				Function: f.Function,
			})
		}
		if !more {
			break
		}
	}

	return out
}
