// Package flags persists the review-event feature switches and gates
// review events on them.
//
// A set of switches is stored per opaque key. The global switch turns the
// review stream on or off as a whole; each category switch (System, Audit,
// Access, Security, Hardware) selects which events pass while the global
// switch is on. Every switch defaults to off.
package flags
