// Package script lets Lua files bind words to Lua functions.
//
// Scripts run in a sandboxed gopher-lua state without io, os, debug or
// module loading. See Runtime for the API exposed to scripts.
package script
