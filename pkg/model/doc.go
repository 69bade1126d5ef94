// Package model holds the collected form state. A Value is either a single
// string or a list of strings; which one is fixed by the field kind, never by
// how many controls shared a name. FormValues keeps schema order so encoded
// records are stable.
package model
