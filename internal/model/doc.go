package model

// Package model defines domain data structures used across the service: cookie
// jar records and their derived status, extraction engine options and results,
// and the normalized download result returned to HTTP callers. Types carry JSON
// tags matching the public response shape.
