// Package knowledge resolves external knowledge-base references (Q-numbers)
// to catalog ids through a SPARQL endpoint, with a JSON file cache in front.
//
// Resolution is best-effort: a failed batch degrades to partial results and
// the build continues with whatever was resolved.
package knowledge
