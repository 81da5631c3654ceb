// Package cache provides an LRU cache for blobs read during a walk.
//
// Tile payloads are read once, but external glTF buffers and images may be
// shared by many tiles. The cache admits a blob on its second request, so
// single-use payloads never displace shared ones.
package cache
