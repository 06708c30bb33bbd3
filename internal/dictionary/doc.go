// Package dictionary maps typed words to callbacks.
//
// A Dictionary holds two independent tables: exact words keyed by their
// literal text and patterns keyed by their pattern source. Resolution is
// two-tier:
//
//  1. An exact entry whose key equals the word wins immediately; no pattern
//     is evaluated.
//  2. Otherwise patterns are tested in registration order and the first one
//     that matches the word wins.
//
// Patterns use ECMAScript regular expression syntax (github.com/dlclark/regexp2)
// and are tested against the whole word the way RegExp.prototype.test does:
// a pattern matches if it matches anywhere in the word unless it is anchored.
//
//	d := dictionary.New()
//	_ = d.Listen(dictionary.Exact("hi"), greet)
//	_ = d.Listen(dictionary.MustPattern(`^a+$`), shout)
//
//	entry, ok, err := d.Resolve("aaa") // shout
package dictionary
