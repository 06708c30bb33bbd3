// Package config loads the wordevents configuration.
//
// Configuration is merged from three layers, later layers overriding
// earlier ones:
//
//  1. Built-in defaults
//  2. The config file, TOML or YAML by extension
//  3. WORDEVENTS_* environment variables
//
// The merged map is decoded into Config and validated. A TOML file looks
// like:
//
//	[engine]
//	digit_interval = "500ms"   # or 500 (milliseconds)
//	event_type = "keyup"
//	accept = "alnum"           # alnum, digits, letters, printable
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[[words]]
//	word = "hi"
//	action = "print"
//	message = "hello"
//
//	[[words]]
//	pattern = "^\\d+$"
//	action = "bell"
//
//	[script]
//	path = "words.lua"
//
// Watcher reloads the file when it changes.
package config
