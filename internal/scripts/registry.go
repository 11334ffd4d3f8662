// Package scripts holds the built-in automation scripts.
package scripts

import (
	"sort"

	"github.com/tas33n/DroidWright/internal/script"
)

// Script is a registered built-in script.
type Script struct {
	name    string
	summary string
	params  []Param
	run     script.Func
}

// Param documents a parameter a script reads with Context.Param.
type Param struct {
	Name    string `yaml:"name"    json:"name"`
	Default string `yaml:"default" json:"default"`
}

// Name implements script.Named.
func (s *Script) Name() string { return s.name }

// Summary is a one-line description.
func (s *Script) Summary() string { return s.summary }

// Params lists the parameters the script reads.
func (s *Script) Params() []Param { return s.params }

// Run implements script.Script.
func (s *Script) Run(c *script.Context) script.Result { return s.run(c) }

var registry = map[string]*Script{}

func register(name, summary string, params []Param, fn script.Func) {
	if _, dup := registry[name]; dup {
		panic("scripts: duplicate registration of " + name)
	}
	registry[name] = &Script{name: name, summary: summary, params: params, run: fn}
}

// Lookup returns the built-in script with the given name.
func Lookup(name string) (*Script, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns every built-in script sorted by name.
func All() []*Script {
	out := make([]*Script, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
