// Package documents persists fetched entry bodies keyed by CID.
//
// Bodies are content-addressed, so a stored row never goes stale: Put keeps
// the first body written for a CID and later writes are ignored. The table
// lets the CLI show entries it has seen before while every gateway is down.
package documents
