// Package director adapts static sections and one live-query section to a
// list-view widget.
//
// Layout of the flat section space:
// - before sections occupy [0, dataSection)
// - the data section sits at dataSection = len(before)
// - after sections occupy (dataSection, sectionCount)
//
// Everything in this package is expected to run on the main queue. Change
// notifications from a Query may arrive on any goroutine and are marshalled
// onto the main queue before they touch the widget.
package director
