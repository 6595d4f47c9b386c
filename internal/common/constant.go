package common

// CIDCacheKey is the metadata key holding the JSON-encoded list of CIDs
// published from this device.
const CIDCacheKey = "cids"

// IPFSScheme prefixes CIDs when they are referenced as token assets.
const IPFSScheme = "ipfs://"
