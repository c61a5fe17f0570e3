// Package ews computes early-warning-signal indicators over rolling windows
// of a detrended time series.
//
// The pipeline is:
//
//  1. Detrend the whole series once ([None], [Linear], [Gaussian] or
//     [FirstDiff]); the residual feeds every indicator.
//  2. Slide a window of fixed width over the residual. The window ending at
//     residual position i covers [i-w+1, i]; positions before w-1 produce no
//     output, so a series of n points yields max(0, n-w+1) values.
//  3. Evaluate each requested indicator on every window.
//  4. Summarize each indicator's trend with Kendall's τ against time.
//
// Output position j is labelled with the timestamp (or original index) of
// the last point of its window. A window with zero variance yields NaN for
// the shape indicators instead of an error.
package ews
