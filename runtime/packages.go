package runtime

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-runtime/engine"
)

// packageSet records search directories, required packages, and preloaded
// Go modules for replay into every fresh state.
//
// Directory lists are append-only and deliberately permit duplicates; the
// package list is deduplicated so require is replayed exactly once per name.
type packageSet struct {
	scriptDirs []string
	nativeDirs []string
	packages   []string
	preloads   []preload
}

// preload couples a module name with a Go loader registered under
// package.preload, the native-extension analogue for an embedded host.
type preload struct {
	loader lua.LGFunction
	name   string
}

func (p *packageSet) hasPackage(name string) bool {
	for _, n := range p.packages {
		if n == name {
			return true
		}
	}
	return false
}

func (p *packageSet) putPreload(name string, loader lua.LGFunction) {
	for i := range p.preloads {
		if p.preloads[i].name == name {
			p.preloads[i].loader = loader
			return
		}
	}
	p.preloads = append(p.preloads, preload{name: name, loader: loader})
}

func appendScriptPath(v *engine.View, dir string) error {
	return v.DoString(fmt.Sprintf(`package.path = package.path .. ";%s/?.lua;%s/?/init.lua"`, dir, dir))
}

func appendNativePath(v *engine.View, dir string) error {
	return v.DoString(fmt.Sprintf(`package.cpath = (package.cpath or "") .. ";%s/?.so"`, dir))
}

func requirePackage(v *engine.View, name string) error {
	return v.DoString(fmt.Sprintf("require(%q)", name))
}

// replay re-applies the registry into a fresh state. Order matters: search
// paths first, then preloaded loaders, then requires, which depend on both.
func (p *packageSet) replay(v *engine.View) error {
	for _, dir := range p.scriptDirs {
		if err := appendScriptPath(v, dir); err != nil {
			return err
		}
	}
	for _, dir := range p.nativeDirs {
		if err := appendNativePath(v, dir); err != nil {
			return err
		}
	}
	for _, pl := range p.preloads {
		v.PreloadModule(pl.name, pl.loader)
	}
	for _, name := range p.packages {
		if err := requirePackage(v, name); err != nil {
			return err
		}
	}
	return nil
}
