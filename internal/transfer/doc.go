// Package transfer implements the versioned JSON backup format.
//
// A transfer package is:
//
//	{
//	  "version": 1,
//	  "exportedAt": "<RFC 3339 timestamp>",
//	  "rituals": [ ...Ritual ]
//	}
//
// Import is gated in two stages. The structural check accepts only a JSON
// object whose "rituals" member is an array and whose "version" is exactly 1.
// The document is then unified against a closed CUE schema so that
// unknown-shaped packages are rejected before they reach the merge engine.
// Response values are typed as integers only; range checks against the
// ritual's scale are deliberately absent so that out-of-range values round
// trip unchanged.
package transfer
