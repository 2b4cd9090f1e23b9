// Command georesolve builds the place hierarchy database from bulk catalog
// dumps and resolves free-text location triples against it.
package main
