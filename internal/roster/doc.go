// Package roster loads the ordered list of work units the monitor
// tracks, along with every alias a unit may appear under in incoming
// filenames. Aliases are folded (case, width, diacritics) once at load
// time so matching downstream compares folded forms only.
package roster
