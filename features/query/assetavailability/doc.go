// Package assetavailability answers whether an asset is free for a date range and lists the ranges
// its blocking reservations occupy.
//
// The answer is advisory. Command handlers repeat the conflict check inside their version-guarded
// write, so reads here may come from a replica.
package assetavailability
