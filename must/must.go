package must

import "regexp"

func NilErr(err error) {
	if nil != err {
		panic("expected nil error, got: " + err.Error())
	}
}

// Value returns v, panicking if err is not nil.
func Value[T any](v T, err error) T {
	NilErr(err)
	return v
}

// Regexps compiles every pattern in order, panicking on the first invalid one.
func Regexps(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, Value(regexp.Compile(p)))
	}

	return out
}
