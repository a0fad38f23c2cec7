// Package resolve turns an incoming filename into a (work unit,
// category, date) identity, or an explainable rejection. It wraps the
// multi-target matcher with the roster alias set, the configured
// category keyword sets, date-stamp extraction with per-category range
// rules, and the accepted archive extensions.
package resolve
