// Package idgen centralises identifier generation so tests can substitute a
// deterministic source.
package idgen
